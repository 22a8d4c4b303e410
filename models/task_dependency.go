package models

import "time"

// TaskDependency records that TaskID depends on DependencyID. The pair
// is unique and never self-referential; both rules are enforced at the
// service layer and backed by the composite unique index.
type TaskDependency struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"not null;uniqueIndex:idx_task_dependency" json:"task_id"`
	DependencyID uint      `gorm:"not null;uniqueIndex:idx_task_dependency" json:"dependency_id"`
	CreatedAt    time.Time `json:"created_at"`
}
