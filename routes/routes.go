package routes

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/larryflorio/larrybot/bot"
	"github.com/larryflorio/larrybot/middleware"
	"github.com/larryflorio/larrybot/service"
)

// WebhookRequest is what the chat transport posts: the command name,
// its already-tokenized arguments, and optionally an uploaded file.
type WebhookRequest struct {
	Command  string   `json:"command" binding:"required"`
	Args     []string `json:"args"`
	FileName string   `json:"file_name"`
	FileB64  string   `json:"file_b64"`
}

// SetupRouter wires the webhook endpoint to the command registry.
func SetupRouter(tasks *service.TaskService, attachments *service.AttachmentService, clients *service.ClientService, webhookSecret string) *gin.Engine {
	r := gin.Default()
	commands := bot.Commands()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	hook := r.Group("/", middleware.WebhookAuth(webhookSecret))
	hook.POST("/webhook", func(c *gin.Context) {
		var req WebhookRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		handler, ok := commands[req.Command]
		if !ok {
			c.JSON(http.StatusOK, gin.H{"reply": "Unknown command: " + req.Command})
			return
		}

		ctx := &bot.Context{Tasks: tasks, Attachments: attachments, Clients: clients, FileName: req.FileName}
		if req.FileB64 != "" {
			content, err := base64.StdEncoding.DecodeString(req.FileB64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file encoding"})
				return
			}
			ctx.FileContent = content
		}

		c.JSON(http.StatusOK, gin.H{"reply": handler(ctx, req.Args)})
	})

	return r
}
