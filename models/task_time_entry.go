package models

import "time"

// TaskTimeEntry is one tracked or manually logged interval. EndedAt is
// nil while a tracked session is still running; DurationMinutes is
// computed at stop time and never negative.
type TaskTimeEntry struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TaskID          uint       `gorm:"not null;index" json:"task_id"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes int        `gorm:"default:0" json:"duration_minutes"`
	Description     string     `json:"description"`
	CreatedAt       time.Time  `json:"created_at"`
}
