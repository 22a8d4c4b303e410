package service

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/larryflorio/larrybot/constants"
	"github.com/larryflorio/larrybot/events"
	"github.com/larryflorio/larrybot/models"
	"github.com/larryflorio/larrybot/repository"
)

// Bulk operations validate every supplied id before touching anything,
// then apply the whole batch inside one transaction so a mid-batch
// fault rolls back cleanly.

func (s *TaskService) BulkUpdateStatus(ids []uint, status string) Result {
	if !constants.ValidStatus(status) {
		return fail(ErrValidation, invalidStatusMessage(status))
	}
	return s.bulk("bulk update status", ids, events.TaskEdited, func(tx *gorm.DB) error {
		return tx.Model(&models.Task{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status": status,
				"done":   status == constants.StatusDone,
			}).Error
	}, fmt.Sprintf("Updated status of %d task(s) to %s", len(ids), status))
}

func (s *TaskService) BulkUpdatePriority(ids []uint, priority string) Result {
	if !constants.ValidPriority(priority) {
		return fail(ErrValidation, invalidPriorityMessage(priority))
	}
	rank := constants.PriorityRanks[priority]
	return s.bulk("bulk update priority", ids, events.TaskEdited, func(tx *gorm.DB) error {
		return tx.Model(&models.Task{}).
			Where("id IN ?", ids).
			Update("priority", rank).Error
	}, fmt.Sprintf("Updated priority of %d task(s) to %s", len(ids), priority))
}

func (s *TaskService) BulkAssignClient(ids []uint, clientID uint) Result {
	if _, err := s.clients.GetByID(clientID); err != nil {
		if err == repository.ErrClientNotFound {
			return fail(ErrNotFound, fmt.Sprintf("Client %d not found", clientID))
		}
		return s.internal("bulk assign client", err)
	}
	return s.bulk("bulk assign client", ids, events.TaskEdited, func(tx *gorm.DB) error {
		return tx.Model(&models.Task{}).
			Where("id IN ?", ids).
			Update("client_id", clientID).Error
	}, fmt.Sprintf("Assigned %d task(s) to client %d", len(ids), clientID))
}

func (s *TaskService) BulkDelete(ids []uint) Result {
	return s.bulk("bulk delete", ids, events.TaskDeleted, func(tx *gorm.DB) error {
		scoped := repository.NewTaskRepository(tx)
		for _, id := range ids {
			if err := scoped.Delete(id); err != nil {
				return err
			}
		}
		return nil
	}, fmt.Sprintf("Deleted %d task(s)", len(ids)))
}

func (s *TaskService) bulk(op string, ids []uint, event string, apply func(tx *gorm.DB) error, message string) Result {
	if len(ids) == 0 {
		return fail(ErrValidation, "No task ids supplied")
	}
	for _, id := range ids {
		exists, err := s.tasks.Exists(id)
		if err != nil {
			return s.internal(op, err)
		}
		if !exists {
			return fail(ErrNotFound, fmt.Sprintf("Task %d not found", id))
		}
	}
	if err := s.tasks.DB.Transaction(apply); err != nil {
		return s.internal(op, err)
	}
	for _, id := range ids {
		s.bus.Publish(event, id)
	}
	return ok(nil, message)
}
