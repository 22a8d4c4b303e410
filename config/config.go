package config

import (
	"github.com/spf13/viper"
)

// Config is everything the process reads from the environment. Values
// come from env vars (LARRYBOT_ prefix) with sane defaults for local
// use.
type Config struct {
	DBDriver      string // "sqlite" or "mysql"
	DBDSN         string
	StorageRoot   string
	ListenAddr    string
	WebhookSecret string
}

func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("LARRYBOT")
	v.AutomaticEnv()

	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "larrybot.db")
	v.SetDefault("storage_root", "attachments")
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("webhook_secret", "")

	return &Config{
		DBDriver:      v.GetString("db_driver"),
		DBDSN:         v.GetString("db_dsn"),
		StorageRoot:   v.GetString("storage_root"),
		ListenAddr:    v.GetString("listen_addr"),
		WebhookSecret: v.GetString("webhook_secret"),
	}
}
