package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/larryflorio/larrybot/constants"
	"github.com/larryflorio/larrybot/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Client{},
		&models.Task{},
		&models.TaskDependency{},
		&models.TaskComment{},
		&models.TaskTimeEntry{},
		&models.TaskAttachment{},
	))
	return db
}

func seedTask(t *testing.T, db *gorm.DB, description string, mutate func(*models.Task)) *models.Task {
	t.Helper()
	task := models.Task{
		Description: description,
		Priority:    constants.PriorityRanks[constants.PriorityMedium],
		Status:      constants.StatusTodo,
	}
	require.NoError(t, task.SetTags(nil))
	if mutate != nil {
		mutate(&task)
	}
	require.NoError(t, db.Create(&task).Error)
	return &task
}

func TestTagMatching(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	t1 := seedTask(t, db, "t1", func(task *models.Task) {
		require.NoError(t, task.SetTags([]string{"urgent", "bug"}))
	})
	t2 := seedTask(t, db, "t2", func(task *models.Task) {
		require.NoError(t, task.SetTags([]string{"urgent", "feature"}))
	})
	t3 := seedTask(t, db, "t3", func(task *models.Task) {
		require.NoError(t, task.SetTags([]string{"bug", "feature"}))
	})

	all, err := repo.List(TaskFilter{Tags: []string{"urgent", "bug"}, TagMatch: MatchAll})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, t1.ID, all[0].ID)

	any, err := repo.List(TaskFilter{Tags: []string{"urgent", "bug"}, TagMatch: MatchAny})
	require.NoError(t, err)
	ids := taskIDs(any)
	require.ElementsMatch(t, []uint{t1.ID, t2.ID, t3.ID}, ids)
}

func TestTagRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	created := seedTask(t, db, "tagged", func(task *models.Task) {
		require.NoError(t, task.SetTags([]string{"a", "b"}))
	})

	loaded, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, loaded.TagList())
}

func TestPriorityRange(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	for _, name := range []string{
		constants.PriorityLow,
		constants.PriorityMedium,
		constants.PriorityHigh,
		constants.PriorityCritical,
	} {
		rank := constants.PriorityRanks[name]
		seedTask(t, db, name, func(task *models.Task) { task.Priority = rank })
	}

	tasks, err := repo.ListByPriorityRange(
		constants.PriorityRanks[constants.PriorityMedium],
		constants.PriorityRanks[constants.PriorityHigh],
	)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		require.Contains(t, []string{constants.PriorityMedium, constants.PriorityHigh}, task.Description)
	}
}

func TestListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	overdue := seedTask(t, db, "pay invoice", func(task *models.Task) {
		task.DueDate = &past
		task.Category = "finance"
	})
	seedTask(t, db, "write report", func(task *models.Task) {
		task.DueDate = &future
		task.Category = "work"
		task.Status = constants.StatusInProgress
	})
	doneLate := seedTask(t, db, "old chore", func(task *models.Task) {
		task.DueDate = &past
		task.Done = true
		task.Status = constants.StatusDone
	})

	got, err := repo.List(TaskFilter{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, overdue.ID, got[0].ID)

	done := true
	got, err = repo.List(TaskFilter{Done: &done})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, doneLate.ID, got[0].ID)

	got, err = repo.List(TaskFilter{Category: "work"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = repo.List(TaskFilter{Status: constants.StatusInProgress})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSearchCaseSensitivity(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	seedTask(t, db, "Fix Login bug", nil)
	seedTask(t, db, "fix logout bug", nil)

	got, err := repo.List(TaskFilter{Search: "Login", CaseSensitive: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Fix Login bug", got[0].Description)

	got, err = repo.List(TaskFilter{Search: "fix", CaseSensitive: false})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestSortAndLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	seedTask(t, db, "low", func(task *models.Task) {
		task.Priority = constants.PriorityRanks[constants.PriorityLow]
	})
	seedTask(t, db, "critical", func(task *models.Task) {
		task.Priority = constants.PriorityRanks[constants.PriorityCritical]
	})
	seedTask(t, db, "high", func(task *models.Task) {
		task.Priority = constants.PriorityRanks[constants.PriorityHigh]
	})

	got, err := repo.List(TaskFilter{SortBy: "priority", SortOrder: "desc"})
	require.NoError(t, err)
	require.Equal(t, []string{"critical", "high", "low"}, descriptions(got))

	got, err = repo.List(TaskFilter{SortBy: "priority", SortOrder: "desc", Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"critical", "high"}, descriptions(got))
}

func TestListEmptyResult(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	got, err := repo.List(TaskFilter{Status: constants.StatusReview})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestHasCommentsAndTimeEntries(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	commented := seedTask(t, db, "commented", nil)
	tracked := seedTask(t, db, "tracked", nil)
	seedTask(t, db, "bare", nil)

	_, err := repo.AddComment(commented.ID, "note")
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, db.Create(&models.TaskTimeEntry{
		TaskID: tracked.ID, StartedAt: now.Add(-time.Hour), EndedAt: &now, DurationMinutes: 60,
	}).Error)

	got, err := repo.List(TaskFilter{HasComments: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, commented.ID, got[0].ID)

	got, err = repo.List(TaskFilter{HasTimeEntries: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, tracked.ID, got[0].ID)
}

func TestDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, "doomed", nil)
	other := seedTask(t, db, "survivor", nil)

	_, err := repo.AddComment(task.ID, "bye")
	require.NoError(t, err)
	require.NoError(t, repo.AddDependency(other.ID, task.ID))

	require.NoError(t, repo.Delete(task.ID))

	_, err = repo.GetByID(task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	var comments int64
	require.NoError(t, db.Model(&models.TaskComment{}).Where("task_id = ?", task.ID).Count(&comments).Error)
	require.Zero(t, comments)

	deps, err := repo.Dependencies(other.ID)
	require.NoError(t, err)
	require.Empty(t, deps)

	require.ErrorIs(t, repo.Delete(task.ID), ErrTaskNotFound)
}

func TestCommentsOrderedOldestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)

	task := seedTask(t, db, "discussed", nil)
	for _, text := range []string{"first", "second", "third"} {
		_, err := repo.AddComment(task.ID, text)
		require.NoError(t, err)
	}

	comments, err := repo.ListComments(task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	require.Equal(t, "first", comments[0].Comment)
	require.Equal(t, "third", comments[2].Comment)
}

func taskIDs(tasks []models.Task) []uint {
	ids := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func descriptions(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Description)
	}
	return out
}
