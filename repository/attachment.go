package repository

import (
	"encoding/hex"
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	"gorm.io/gorm"

	"github.com/larryflorio/larrybot/models"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

// AttachmentRepository persists attachment bytes under a storage root
// using content-addressed names and keeps the metadata rows. Identical
// content hashes to the same name, so re-attaching the same bytes
// reuses the existing file.
type AttachmentRepository struct {
	DB   *gorm.DB
	Root string
}

func NewAttachmentRepository(db *gorm.DB, root string) *AttachmentRepository {
	return &AttachmentRepository{DB: db, Root: root}
}

// StorageName derives the content-addressed filename: blake3 hash of
// the bytes plus the original extension.
func StorageName(content []byte, originalFilename string) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:]) + strings.ToLower(filepath.Ext(originalFilename))
}

// Add writes the content to disk and inserts the metadata row. The
// storage root is created on demand; MIME type is guessed from the
// original filename with an octet-stream fallback.
func (r *AttachmentRepository) Add(taskID uint, content []byte, originalFilename, description string, isPublic bool) (*models.TaskAttachment, error) {
	if err := os.MkdirAll(r.Root, 0o755); err != nil {
		return nil, err
	}

	name := StorageName(content, originalFilename)
	path := filepath.Join(r.Root, name)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(originalFilename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	attachment := models.TaskAttachment{
		TaskID:           taskID,
		Filename:         name,
		OriginalFilename: originalFilename,
		FilePath:         path,
		Size:             int64(len(content)),
		MimeType:         mimeType,
		Description:      description,
		IsPublic:         isPublic,
	}
	if err := r.DB.Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) GetByID(id uint) (*models.TaskAttachment, error) {
	var attachment models.TaskAttachment
	if err := r.DB.First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) ListForTask(taskID uint) ([]models.TaskAttachment, error) {
	var attachments []models.TaskAttachment
	err := r.DB.Where("task_id = ?", taskID).Order("created_at asc, id asc").Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *AttachmentRepository) UpdateDescription(id uint, description string) (*models.TaskAttachment, error) {
	attachment, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	attachment.Description = description
	if err := r.DB.Save(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}

func (r *AttachmentRepository) SetPublic(id uint, public bool) (*models.TaskAttachment, error) {
	attachment, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	attachment.IsPublic = public
	if err := r.DB.Save(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}

// Remove deletes the on-disk file when present, then the metadata row,
// and returns the removed record so callers can report the filename.
// Other rows sharing the same content keep their file.
func (r *AttachmentRepository) Remove(id uint) (*models.TaskAttachment, error) {
	attachment, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	var sharing int64
	if err := r.DB.Model(&models.TaskAttachment{}).
		Where("file_path = ? AND id <> ?", attachment.FilePath, id).
		Count(&sharing).Error; err != nil {
		return nil, err
	}
	if sharing == 0 {
		if err := os.Remove(attachment.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := r.DB.Delete(&models.TaskAttachment{}, id).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}

// AttachmentStats summarizes a task's attachments.
type AttachmentStats struct {
	TaskID     uint           `json:"task_id"`
	Count      int            `json:"count"`
	TotalSize  int64          `json:"total_size"`
	Extensions map[string]int `json:"extensions"`
}

// Stats computes count, total bytes, and a histogram of original-file
// extensions (lowercased).
func (r *AttachmentRepository) Stats(taskID uint) (*AttachmentStats, error) {
	attachments, err := r.ListForTask(taskID)
	if err != nil {
		return nil, err
	}

	stats := AttachmentStats{
		TaskID:     taskID,
		Count:      len(attachments),
		Extensions: map[string]int{},
	}
	for _, a := range attachments {
		stats.TotalSize += a.Size
		ext := strings.ToLower(filepath.Ext(a.OriginalFilename))
		if ext != "" {
			stats.Extensions[ext]++
		}
	}
	return &stats, nil
}
