package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/larryflorio/larrybot/models"
)

var (
	ErrAlreadyStarted = errors.New("time tracking already started")
	ErrNotStarted     = errors.New("time tracking not started")
)

// TimeTracker owns the per-task session state machine: Idle -> Start ->
// Running -> Stop -> Idle. started_at on the task is the running flag.
type TimeTracker struct {
	DB *gorm.DB
}

func NewTimeTracker(db *gorm.DB) *TimeTracker {
	return &TimeTracker{DB: db}
}

// Start begins a tracking session. The conditional update only fires
// when started_at is null, so two racing starts cannot both win. The
// session is visible immediately as an open time-entry row (ended_at
// null) that Stop later closes.
func (t *TimeTracker) Start(taskID uint) (time.Time, error) {
	now := time.Now()
	err := t.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND started_at IS NULL", taskID).
			Update("started_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			exists, err := taskExists(tx, taskID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrTaskNotFound
			}
			return ErrAlreadyStarted
		}
		return tx.Create(&models.TaskTimeEntry{TaskID: taskID, StartedAt: now}).Error
	})
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Stop ends the running session, accumulates the elapsed hours into
// actual_hours, records a time entry, and returns the elapsed
// duration. Negative elapsed (clock skew) clamps to zero.
func (t *TimeTracker) Stop(taskID uint) (time.Duration, error) {
	var elapsed time.Duration
	err := t.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if task.StartedAt == nil {
			return ErrNotStarted
		}

		now := time.Now()
		elapsed = now.Sub(*task.StartedAt)
		if elapsed < 0 {
			elapsed = 0
		}

		hours := elapsed.Hours()
		total := hours
		if task.ActualHours != nil {
			total += *task.ActualHours
		}

		res := tx.Model(&models.TaskTimeEntry{}).
			Where("task_id = ? AND ended_at IS NULL", taskID).
			Updates(map[string]interface{}{
				"ended_at":         now,
				"duration_minutes": int(elapsed.Minutes()),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// started_at was set outside Start; record the session anyway.
			entry := models.TaskTimeEntry{
				TaskID:          taskID,
				StartedAt:       *task.StartedAt,
				EndedAt:         &now,
				DurationMinutes: int(elapsed.Minutes()),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		return tx.Model(&task).Updates(map[string]interface{}{
			"started_at":   nil,
			"actual_hours": total,
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return elapsed, nil
}

// AddManualEntry stores an explicit interval as a standalone entry. It
// never touches started_at or actual_hours. The duration derives the
// same way Stop's does: a negative interval clamps to zero.
func (t *TimeTracker) AddManualEntry(taskID uint, start, end time.Time, description string) (*models.TaskTimeEntry, error) {
	exists, err := taskExists(t.DB, taskID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTaskNotFound
	}

	minutes := int(end.Sub(start).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	entry := models.TaskTimeEntry{
		TaskID:          taskID,
		StartedAt:       start,
		EndedAt:         &end,
		DurationMinutes: minutes,
		Description:     description,
	}
	if err := t.DB.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// TimeSummary is the per-task accounting report.
type TimeSummary struct {
	TaskID         uint    `json:"task_id"`
	EstimatedHours float64 `json:"estimated_hours"`
	ActualHours    float64 `json:"actual_hours"`
	TotalMinutes   int64   `json:"total_minutes"`
	EntryCount     int64   `json:"entry_count"`
	CommentCount   int64   `json:"comment_count"`
	Efficiency     float64 `json:"efficiency"`
}

// Summary aggregates estimates, tracked time, and comment volume.
// Efficiency is estimated/actual x 100 when actual > 0, else 0.
func (t *TimeTracker) Summary(taskID uint) (*TimeSummary, error) {
	var task models.Task
	if err := t.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	summary := TimeSummary{TaskID: taskID}
	if task.EstimatedHours != nil {
		summary.EstimatedHours = *task.EstimatedHours
	}
	if task.ActualHours != nil {
		summary.ActualHours = *task.ActualHours
	}

	row := t.DB.Model(&models.TaskTimeEntry{}).
		Where("task_id = ?", taskID).
		Select("COALESCE(SUM(duration_minutes), 0) AS total, COUNT(*) AS count").
		Row()
	if err := row.Scan(&summary.TotalMinutes, &summary.EntryCount); err != nil {
		return nil, err
	}

	if err := t.DB.Model(&models.TaskComment{}).
		Where("task_id = ?", taskID).
		Count(&summary.CommentCount).Error; err != nil {
		return nil, err
	}

	if summary.ActualHours > 0 {
		summary.Efficiency = summary.EstimatedHours / summary.ActualHours * 100
	}
	return &summary, nil
}

func taskExists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
