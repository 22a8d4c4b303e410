package models

import (
	"encoding/json"
	"time"
)

// Task is a unit of work. Priority is stored as its ordinal rank (see
// constants.PriorityRanks) so range queries and priority sorting work
// directly in SQL. Tags are an ordered list of strings serialized into
// one column; use SetTags/TagList rather than touching Tags directly.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Description    string     `gorm:"not null" json:"description"`
	Done           bool       `gorm:"default:false" json:"done"`
	Priority       int        `gorm:"default:2;index" json:"priority"`
	Status         string     `gorm:"default:'Todo';index" json:"status"`
	Category       string     `gorm:"index" json:"category"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	StartedAt      *time.Time `json:"started_at"`
	Tags           string     `json:"tags"`
	ParentID       *uint      `gorm:"index" json:"parent_id"`
	ClientID       *uint      `gorm:"index" json:"client_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Subtasks    []Task           `gorm:"foreignKey:ParentID" json:"subtasks,omitempty"`
	Comments    []TaskComment    `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	TimeEntries []TaskTimeEntry  `gorm:"constraint:OnDelete:CASCADE" json:"time_entries,omitempty"`
	Attachments []TaskAttachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// TagList decodes the serialized tag column. An empty or malformed
// value decodes to an empty list, never an error.
func (t *Task) TagList() []string {
	if t.Tags == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(t.Tags), &tags); err != nil {
		return []string{}
	}
	return tags
}

// SetTags serializes the given list, preserving order.
func (t *Task) SetTags(tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	t.Tags = string(data)
	return nil
}

// HasAnyTag reports whether the task's tag set intersects the query
// set. Exact string equality per tag.
func (t *Task) HasAnyTag(tags []string) bool {
	for _, have := range t.TagList() {
		for _, q := range tags {
			if q == have {
				return true
			}
		}
	}
	return false
}

// HasAllTags reports whether the task's tag set is a superset of the
// query set.
func (t *Task) HasAllTags(tags []string) bool {
	own := make(map[string]bool, 8)
	for _, have := range t.TagList() {
		own[have] = true
	}
	for _, q := range tags {
		if !own[q] {
			return false
		}
	}
	return true
}
