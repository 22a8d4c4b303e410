package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/larryflorio/larrybot/constants"
	"github.com/larryflorio/larrybot/models"
)

var ErrTaskNotFound = errors.New("task not found")

// TagMatch selects the tag-set semantics of TaskFilter.Tags.
type TagMatch string

const (
	MatchAny TagMatch = "any" // tag sets intersect
	MatchAll TagMatch = "all" // task tags are a superset
)

// TaskFilter is the full set of optional criteria the query engine
// understands. Zero values mean "not filtered"; pointer fields
// distinguish "unset" from a meaningful zero. All criteria combine
// with AND.
type TaskFilter struct {
	Status         string
	Priority       string // exact label, e.g. "High"
	MinPriority    int    // ordinal range, inclusive; 0 = unset
	MaxPriority    int
	Category       string
	DueBefore      *time.Time
	DueAfter       *time.Time
	OverdueOnly    bool
	ClientID       *uint
	ParentID       *uint
	Done           *bool
	Tags           []string
	TagMatch       TagMatch
	HasComments    bool
	HasTimeEntries bool
	EstimatedMin   *float64
	EstimatedMax   *float64
	CreatedBefore  *time.Time
	CreatedAfter   *time.Time
	Search         string
	CaseSensitive  bool
	SortBy         string // created_at, due_date, priority, status, category
	SortOrder      string // asc, desc
	Limit          int
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"priority":   "priority",
	"status":     "status",
	"category":   "category",
}

// TaskRepository issues all task queries. Read paths have no side
// effects.
type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(task *models.Task) error {
	return r.DB.Create(task).Error
}

func (r *TaskRepository) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := r.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.DB.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TaskRepository) Save(task *models.Task) error {
	return r.DB.Save(task).Error
}

// Delete removes the task and everything hanging off it. Dependency
// rows referencing the task from either side go too; sqlite does not
// always honor the declared cascades, so dependents are cleared
// explicitly inside one transaction.
func (r *TaskRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskTimeEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ? OR dependency_id = ?", id, id).
			Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Task{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// List composes every set criterion into one query. Scalar predicates
// run in SQL; tag matching runs in memory over the decoded list because
// tags live JSON-encoded in a single column. The limit is applied after
// tag filtering so it counts surviving rows.
func (r *TaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	q := r.DB.Model(&models.Task{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		rank, ok := priorityRank(filter.Priority)
		if !ok {
			return nil, fmt.Errorf("unknown priority %q", filter.Priority)
		}
		q = q.Where("priority = ?", rank)
	}
	if filter.MinPriority > 0 {
		q = q.Where("priority >= ?", filter.MinPriority)
	}
	if filter.MaxPriority > 0 {
		q = q.Where("priority <= ?", filter.MaxPriority)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.DueBefore != nil {
		q = q.Where("due_date < ?", filter.DueBefore)
	}
	if filter.DueAfter != nil {
		q = q.Where("due_date > ?", filter.DueAfter)
	}
	if filter.OverdueOnly {
		q = q.Where("due_date < ? AND done = ?", time.Now(), false)
	}
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ParentID != nil {
		q = q.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.Done != nil {
		q = q.Where("done = ?", *filter.Done)
	}
	if filter.HasComments {
		q = q.Where("id IN (?)", r.DB.Model(&models.TaskComment{}).Select("task_id"))
	}
	if filter.HasTimeEntries {
		q = q.Where("id IN (?)", r.DB.Model(&models.TaskTimeEntry{}).Select("task_id"))
	}
	if filter.EstimatedMin != nil {
		q = q.Where("estimated_hours >= ?", *filter.EstimatedMin)
	}
	if filter.EstimatedMax != nil {
		q = q.Where("estimated_hours <= ?", *filter.EstimatedMax)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at < ?", filter.CreatedBefore)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("created_at > ?", filter.CreatedAfter)
	}
	// Case-insensitive search pushes down to LIKE; the case-sensitive
	// variant is filtered in memory below since collation behavior
	// differs across drivers.
	if filter.Search != "" && !filter.CaseSensitive {
		q = q.Where("description LIKE ?", "%"+filter.Search+"%")
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "asc"
	if filter.SortOrder == "desc" {
		order = "desc"
	}
	q = q.Order(column + " " + order)

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}

	if filter.Search != "" && filter.CaseSensitive {
		matched := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if strings.Contains(t.Description, filter.Search) {
				matched = append(matched, t)
			}
		}
		tasks = matched
	}

	if len(filter.Tags) > 0 {
		matched := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			switch filter.TagMatch {
			case MatchAll:
				if t.HasAllTags(filter.Tags) {
					matched = append(matched, t)
				}
			default:
				if t.HasAnyTag(filter.Tags) {
					matched = append(matched, t)
				}
			}
		}
		tasks = matched
	}

	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func priorityRank(label string) (int, bool) {
	rank, ok := constants.PriorityRanks[label]
	return rank, ok
}

// ListByPriorityRange returns tasks whose priority rank lies within
// [min, max] inclusive. Callers pass min <= max by rank.
func (r *TaskRepository) ListByPriorityRange(min, max int) ([]models.Task, error) {
	return r.List(TaskFilter{MinPriority: min, MaxPriority: max, SortBy: "priority", SortOrder: "desc"})
}

func (r *TaskRepository) AddComment(taskID uint, text string) (*models.TaskComment, error) {
	comment := models.TaskComment{TaskID: taskID, Comment: text}
	if err := r.DB.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns a task's comments oldest first.
func (r *TaskRepository) ListComments(taskID uint) ([]models.TaskComment, error) {
	var comments []models.TaskComment
	err := r.DB.Where("task_id = ?", taskID).Order("created_at asc, id asc").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *TaskRepository) AddDependency(taskID, dependencyID uint) error {
	dep := models.TaskDependency{TaskID: taskID, DependencyID: dependencyID}
	return r.DB.Create(&dep).Error
}

func (r *TaskRepository) DependencyExists(taskID, dependencyID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.TaskDependency{}).
		Where("task_id = ? AND dependency_id = ?", taskID, dependencyID).
		Count(&count).Error
	return count > 0, err
}

// Dependencies returns the ids this task depends on.
func (r *TaskRepository) Dependencies(taskID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.TaskDependency{}).
		Where("task_id = ?", taskID).
		Order("dependency_id asc").
		Pluck("dependency_id", &ids).Error
	return ids, err
}

// DependencyEdges returns the whole dependency graph as an adjacency
// map, used by cycle detection.
func (r *TaskRepository) DependencyEdges() (map[uint][]uint, error) {
	var deps []models.TaskDependency
	if err := r.DB.Find(&deps).Error; err != nil {
		return nil, err
	}
	edges := make(map[uint][]uint, len(deps))
	for _, d := range deps {
		edges[d.TaskID] = append(edges[d.TaskID], d.DependencyID)
	}
	return edges, nil
}
