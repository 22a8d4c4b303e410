package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newAttachmentRepo(t *testing.T) (*AttachmentRepository, *TaskRepository) {
	t.Helper()
	db := newTestDB(t)
	return NewAttachmentRepository(db, t.TempDir()), NewTaskRepository(db)
}

func TestStorageNameIsContentAddressed(t *testing.T) {
	a := StorageName([]byte("hello"), "notes.TXT")
	b := StorageName([]byte("hello"), "other.txt")
	c := StorageName([]byte("goodbye"), "notes.txt")

	require.Equal(t, a, b, "same bytes and extension hash to the same name")
	require.NotEqual(t, a, c)
	require.Equal(t, ".txt", filepath.Ext(a))
}

func TestAddWritesFileAndMetadata(t *testing.T) {
	repo, tasks := newAttachmentRepo(t)
	task := seedTask(t, tasks.DB, "with file", nil)

	content := []byte("report body")
	attachment, err := repo.Add(task.ID, content, "report.pdf", "Q3 report", false)
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), attachment.Size)
	require.Equal(t, "application/pdf", attachment.MimeType)
	require.Equal(t, "report.pdf", attachment.OriginalFilename)

	onDisk, err := os.ReadFile(attachment.FilePath)
	require.NoError(t, err)
	require.Equal(t, content, onDisk)
}

func TestAddUnknownExtensionFallsBack(t *testing.T) {
	repo, tasks := newAttachmentRepo(t)
	task := seedTask(t, tasks.DB, "odd file", nil)

	attachment, err := repo.Add(task.ID, []byte("x"), "blob.weirdext", "", false)
	require.NoError(t, err)
	require.Equal(t, "application/octet-stream", attachment.MimeType)
}

func TestDuplicateContentSharesFile(t *testing.T) {
	repo, tasks := newAttachmentRepo(t)
	task := seedTask(t, tasks.DB, "duped", nil)

	content := []byte("same bytes")
	first, err := repo.Add(task.ID, content, "a.txt", "", false)
	require.NoError(t, err)
	second, err := repo.Add(task.ID, content, "b.txt", "", false)
	require.NoError(t, err)

	require.Equal(t, first.FilePath, second.FilePath)

	entries, err := os.ReadDir(filepath.Dir(first.FilePath))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Removing one record keeps the shared file for the other.
	_, err = repo.Remove(first.ID)
	require.NoError(t, err)
	_, statErr := os.Stat(second.FilePath)
	require.NoError(t, statErr)
}

func TestRemoveDeletesFileAndRow(t *testing.T) {
	repo, tasks := newAttachmentRepo(t)
	task := seedTask(t, tasks.DB, "cleanup", nil)

	attachment, err := repo.Add(task.ID, []byte("temp"), "temp.txt", "", false)
	require.NoError(t, err)

	removed, err := repo.Remove(attachment.ID)
	require.NoError(t, err)
	require.Equal(t, "temp.txt", removed.OriginalFilename)

	_, err = os.Stat(attachment.FilePath)
	require.True(t, os.IsNotExist(err))

	_, err = repo.GetByID(attachment.ID)
	require.ErrorIs(t, err, ErrAttachmentNotFound)

	_, err = repo.Remove(attachment.ID)
	require.ErrorIs(t, err, ErrAttachmentNotFound)
}

func TestStats(t *testing.T) {
	repo, tasks := newAttachmentRepo(t)
	task := seedTask(t, tasks.DB, "stats", nil)

	_, err := repo.Add(task.ID, []byte("one"), "a.pdf", "", false)
	require.NoError(t, err)
	_, err = repo.Add(task.ID, []byte("twoo"), "b.pdf", "", false)
	require.NoError(t, err)
	_, err = repo.Add(task.ID, []byte("three"), "c.png", "", true)
	require.NoError(t, err)

	stats, err := repo.Stats(task.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Count)
	require.Equal(t, int64(3+4+5), stats.TotalSize)
	require.Equal(t, map[string]int{".pdf": 2, ".png": 1}, stats.Extensions)
}

func TestUpdateDescriptionAndVisibility(t *testing.T) {
	repo, tasks := newAttachmentRepo(t)
	task := seedTask(t, tasks.DB, "meta", nil)

	attachment, err := repo.Add(task.ID, []byte("data"), "doc.md", "old", false)
	require.NoError(t, err)

	updated, err := repo.UpdateDescription(attachment.ID, "new description")
	require.NoError(t, err)
	require.Equal(t, "new description", updated.Description)

	public, err := repo.SetPublic(attachment.ID, true)
	require.NoError(t, err)
	require.True(t, public.IsPublic)
}
