package models

import "time"

// TaskAttachment is the metadata row for a stored file. Filename is the
// content-addressed storage name (hash + original extension); FilePath
// is the absolute location under the storage root.
type TaskAttachment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TaskID           uint      `gorm:"not null;index" json:"task_id"`
	Filename         string    `gorm:"not null" json:"filename"`
	OriginalFilename string    `gorm:"not null" json:"original_filename"`
	FilePath         string    `gorm:"not null" json:"file_path"`
	Size             int64     `gorm:"not null" json:"size"`
	MimeType         string    `json:"mime_type"`
	Description      string    `json:"description"`
	IsPublic         bool      `gorm:"default:false" json:"is_public"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
