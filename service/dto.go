package service

import (
	"time"

	"github.com/larryflorio/larrybot/constants"
	"github.com/larryflorio/larrybot/models"
)

// DTO helpers flatten entities into transport-safe maps: ISO-8601
// strings for times, floats for hours, the decoded tag list, and the
// priority label instead of its rank.

func taskDTO(task *models.Task) map[string]any {
	dto := map[string]any{
		"id":          task.ID,
		"description": task.Description,
		"done":        task.Done,
		"priority":    constants.PriorityName(task.Priority),
		"status":      task.Status,
		"category":    task.Category,
		"tags":        task.TagList(),
		"created_at":  task.CreatedAt.Format(time.RFC3339),
		"updated_at":  task.UpdatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		dto["due_date"] = task.DueDate.Format(time.RFC3339)
	}
	if task.EstimatedHours != nil {
		dto["estimated_hours"] = *task.EstimatedHours
	}
	if task.ActualHours != nil {
		dto["actual_hours"] = *task.ActualHours
	}
	if task.StartedAt != nil {
		dto["started_at"] = task.StartedAt.Format(time.RFC3339)
	}
	if task.ParentID != nil {
		dto["parent_id"] = *task.ParentID
	}
	if task.ClientID != nil {
		dto["client_id"] = *task.ClientID
	}
	return dto
}

func taskListDTO(tasks []models.Task) []map[string]any {
	dtos := make([]map[string]any, 0, len(tasks))
	for i := range tasks {
		dtos = append(dtos, taskDTO(&tasks[i]))
	}
	return dtos
}

func commentDTO(comment *models.TaskComment) map[string]any {
	return map[string]any{
		"id":         comment.ID,
		"task_id":    comment.TaskID,
		"comment":    comment.Comment,
		"created_at": comment.CreatedAt.Format(time.RFC3339),
	}
}

func timeEntryDTO(entry *models.TaskTimeEntry) map[string]any {
	dto := map[string]any{
		"id":               entry.ID,
		"task_id":          entry.TaskID,
		"started_at":       entry.StartedAt.Format(time.RFC3339),
		"duration_minutes": entry.DurationMinutes,
		"description":      entry.Description,
	}
	if entry.EndedAt != nil {
		dto["ended_at"] = entry.EndedAt.Format(time.RFC3339)
	}
	return dto
}

func attachmentDTO(attachment *models.TaskAttachment) map[string]any {
	return map[string]any{
		"id":                attachment.ID,
		"task_id":           attachment.TaskID,
		"filename":          attachment.Filename,
		"original_filename": attachment.OriginalFilename,
		"size":              attachment.Size,
		"mime_type":         attachment.MimeType,
		"description":       attachment.Description,
		"is_public":         attachment.IsPublic,
		"created_at":        attachment.CreatedAt.Format(time.RFC3339),
	}
}
