package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/larryflorio/larrybot/events"
	"github.com/larryflorio/larrybot/models"
	"github.com/larryflorio/larrybot/repository"
	"github.com/larryflorio/larrybot/service"
)

func setupRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Client{},
		&models.Task{},
		&models.TaskDependency{},
		&models.TaskComment{},
		&models.TaskTimeEntry{},
		&models.TaskAttachment{},
	))

	taskRepo := repository.NewTaskRepository(db)
	clientRepo := repository.NewClientRepository(db)
	tracker := repository.NewTimeTracker(db)
	attachmentRepo := repository.NewAttachmentRepository(db, t.TempDir())
	bus := events.NewMemoryBus()

	return SetupRouter(
		service.NewTaskService(taskRepo, clientRepo, tracker, bus),
		service.NewAttachmentService(attachmentRepo, taskRepo, bus),
		service.NewClientService(clientRepo),
		secret,
	)
}

func postWebhook(t *testing.T, r http.Handler, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, "/webhook", &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func replyOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["reply"]
}

func TestWebhookDispatch(t *testing.T) {
	r := setupRouter(t, "")

	w := postWebhook(t, r, WebhookRequest{Command: "addtask", Args: []string{"water", "plants"}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, replyOf(t, w), "Task 1 created")

	w = postWebhook(t, r, WebhookRequest{Command: "done", Args: []string{"1"}}, "")
	assert.Contains(t, replyOf(t, w), "marked done")

	w = postWebhook(t, r, WebhookRequest{Command: "frobnicate"}, "")
	assert.Contains(t, replyOf(t, w), "Unknown command")
}

func TestWebhookAuth(t *testing.T) {
	secret := "test-secret"
	r := setupRouter(t, secret)

	w := postWebhook(t, r, WebhookRequest{Command: "list"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	claims := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	w = postWebhook(t, r, WebhookRequest{Command: "list"}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postWebhook(t, r, WebhookRequest{Command: "list"}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookFileUpload(t *testing.T) {
	r := setupRouter(t, "")

	postWebhook(t, r, WebhookRequest{Command: "addtask", Args: []string{"review", "doc"}}, "")

	w := postWebhook(t, r, WebhookRequest{
		Command:  "attach",
		Args:     []string{"1", "design", "notes"},
		FileName: "notes.pdf",
		FileB64:  "aGVsbG8gd29ybGQ=",
	}, "")
	assert.Contains(t, replyOf(t, w), "Attached notes.pdf")

	w = postWebhook(t, r, WebhookRequest{Command: "attach", Args: []string{"1"}}, "")
	assert.Contains(t, replyOf(t, w), "Attach a file")
}

func TestHealthz(t *testing.T) {
	r := setupRouter(t, "ignored")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
