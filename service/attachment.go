package service

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/larryflorio/larrybot/constants"
	"github.com/larryflorio/larrybot/events"
	"github.com/larryflorio/larrybot/repository"
)

// AttachmentService validates uploads ahead of the content-addressed
// store. Checks short-circuit in a fixed order: task, size, filename,
// extension.
type AttachmentService struct {
	attachments *repository.AttachmentRepository
	tasks       *repository.TaskRepository
	bus         events.Bus
}

func NewAttachmentService(attachments *repository.AttachmentRepository, tasks *repository.TaskRepository, bus events.Bus) *AttachmentService {
	if bus == nil {
		bus = events.NopBus{}
	}
	return &AttachmentService{attachments: attachments, tasks: tasks, bus: bus}
}

func (s *AttachmentService) Attach(taskID uint, content []byte, originalFilename, description string, isPublic bool) Result {
	exists, err := s.tasks.Exists(taskID)
	if err != nil {
		return s.internal("attach file", err)
	}
	if !exists {
		return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
	}
	if len(content) > constants.MaxAttachmentSize {
		return fail(ErrValidation, fmt.Sprintf("File too large: %d bytes (max %d)", len(content), constants.MaxAttachmentSize))
	}
	if originalFilename == "" || utf8.RuneCountInString(originalFilename) > constants.MaxFilenameLength {
		return fail(ErrValidation, fmt.Sprintf("Invalid filename: must be 1-%d characters", constants.MaxFilenameLength))
	}
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == "" || !constants.AllowedExtensions[ext] {
		return fail(ErrValidation, fmt.Sprintf("File type not allowed: %q", ext))
	}

	attachment, err := s.attachments.Add(taskID, content, originalFilename, description, isPublic)
	if err != nil {
		return s.internal("attach file", err)
	}
	s.bus.Publish(events.AttachmentAdded, attachment.ID)
	return ok(attachmentDTO(attachment), fmt.Sprintf("Attached %s to task %d", originalFilename, taskID))
}

func (s *AttachmentService) Get(id uint) Result {
	attachment, err := s.attachments.GetByID(id)
	if err != nil {
		return s.attachmentError("get attachment", id, err)
	}
	return ok(attachmentDTO(attachment), fmt.Sprintf("Attachment %d", id))
}

func (s *AttachmentService) ListForTask(taskID uint) Result {
	exists, err := s.tasks.Exists(taskID)
	if err != nil {
		return s.internal("list attachments", err)
	}
	if !exists {
		return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
	}
	attachments, err := s.attachments.ListForTask(taskID)
	if err != nil {
		return s.internal("list attachments", err)
	}
	dtos := make([]map[string]any, 0, len(attachments))
	for i := range attachments {
		dtos = append(dtos, attachmentDTO(&attachments[i]))
	}
	return ok(dtos, fmt.Sprintf("%d attachment(s)", len(dtos)))
}

func (s *AttachmentService) UpdateDescription(id uint, description string) Result {
	if n := utf8.RuneCountInString(description); n < constants.MinDescriptionLen || n > constants.MaxDescriptionLen {
		return fail(ErrValidation, fmt.Sprintf("Description must be %d-%d characters",
			constants.MinDescriptionLen, constants.MaxDescriptionLen))
	}
	attachment, err := s.attachments.UpdateDescription(id, description)
	if err != nil {
		return s.attachmentError("update attachment description", id, err)
	}
	return ok(attachmentDTO(attachment), fmt.Sprintf("Attachment %d updated", id))
}

func (s *AttachmentService) SetPublic(id uint, public bool) Result {
	attachment, err := s.attachments.SetPublic(id, public)
	if err != nil {
		return s.attachmentError("set attachment visibility", id, err)
	}
	visibility := "private"
	if public {
		visibility = "public"
	}
	return ok(attachmentDTO(attachment), fmt.Sprintf("Attachment %d is now %s", id, visibility))
}

func (s *AttachmentService) Remove(id uint) Result {
	attachment, err := s.attachments.Remove(id)
	if err != nil {
		return s.attachmentError("remove attachment", id, err)
	}
	return ok(attachmentDTO(attachment), fmt.Sprintf("Removed %s", attachment.OriginalFilename))
}

func (s *AttachmentService) Stats(taskID uint) Result {
	exists, err := s.tasks.Exists(taskID)
	if err != nil {
		return s.internal("attachment stats", err)
	}
	if !exists {
		return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
	}
	stats, err := s.attachments.Stats(taskID)
	if err != nil {
		return s.internal("attachment stats", err)
	}
	return ok(stats, fmt.Sprintf("Attachment stats for task %d", taskID))
}

func (s *AttachmentService) attachmentError(op string, id uint, err error) Result {
	if err == repository.ErrAttachmentNotFound {
		return fail(ErrNotFound, fmt.Sprintf("Attachment %d not found", id))
	}
	return s.internal(op, err)
}

func (s *AttachmentService) internal(op string, err error) Result {
	slog.Error("attachment service failure", "op", op, "err", err)
	return fail(ErrInternal, "Something went wrong, please try again")
}
