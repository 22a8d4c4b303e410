package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/larryflorio/larrybot/config"
	"github.com/larryflorio/larrybot/events"
	"github.com/larryflorio/larrybot/repository"
	"github.com/larryflorio/larrybot/routes"
	"github.com/larryflorio/larrybot/service"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg := config.Load()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		slog.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	if err := config.Migrate(db); err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}

	bus := events.NewMemoryBus()
	bus.Subscribe(events.TaskCompleted, func(payload any) {
		slog.Info("task completed", "task_id", payload)
	})

	taskRepo := repository.NewTaskRepository(db)
	clientRepo := repository.NewClientRepository(db)
	tracker := repository.NewTimeTracker(db)
	attachmentRepo := repository.NewAttachmentRepository(db, cfg.StorageRoot)

	taskService := service.NewTaskService(taskRepo, clientRepo, tracker, bus)
	attachmentService := service.NewAttachmentService(attachmentRepo, taskRepo, bus)
	clientService := service.NewClientService(clientRepo)

	r := routes.SetupRouter(taskService, attachmentService, clientService, cfg.WebhookSecret)

	slog.Info("listening", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
