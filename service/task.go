package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/larryflorio/larrybot/constants"
	"github.com/larryflorio/larrybot/events"
	"github.com/larryflorio/larrybot/models"
	"github.com/larryflorio/larrybot/repository"
)

var validate = validator.New()

// TaskService is the validation façade over the task repository and
// time tracker. Every method returns a Result; no error ever escapes.
type TaskService struct {
	tasks   *repository.TaskRepository
	clients *repository.ClientRepository
	tracker *repository.TimeTracker
	bus     events.Bus
}

func NewTaskService(tasks *repository.TaskRepository, clients *repository.ClientRepository, tracker *repository.TimeTracker, bus events.Bus) *TaskService {
	if bus == nil {
		bus = events.NopBus{}
	}
	return &TaskService{tasks: tasks, clients: clients, tracker: tracker, bus: bus}
}

// CreateTaskParams carries everything CreateTask accepts beyond the
// description. Zero values are left to model defaults.
type CreateTaskParams struct {
	Description    string `validate:"required,max=2000"`
	Priority       string
	Status         string
	Category       string `validate:"max=100"`
	DueDate        *time.Time
	EstimatedHours *float64
	Tags           []string
	ParentID       *uint
	ClientID       *uint
}

func (s *TaskService) CreateTask(params CreateTaskParams) Result {
	if err := validate.Struct(params); err != nil {
		return fail(ErrValidation, "Invalid task: "+err.Error())
	}
	task := models.Task{
		Description:    params.Description,
		Priority:       constants.PriorityRanks[constants.PriorityMedium],
		Status:         constants.StatusTodo,
		Category:       params.Category,
		EstimatedHours: params.EstimatedHours,
		ClientID:       params.ClientID,
	}

	if params.Priority != "" {
		if !constants.ValidPriority(params.Priority) {
			return fail(ErrValidation, invalidPriorityMessage(params.Priority))
		}
		task.Priority = constants.PriorityRanks[params.Priority]
	}
	if params.Status != "" {
		if !constants.ValidStatus(params.Status) {
			return fail(ErrValidation, invalidStatusMessage(params.Status))
		}
		task.Status = params.Status
	}
	if params.DueDate != nil {
		if params.DueDate.Before(time.Now()) {
			return fail(ErrValidation, "Due date cannot be in the past")
		}
		task.DueDate = params.DueDate
	}
	if err := task.SetTags(params.Tags); err != nil {
		return fail(ErrValidation, "Invalid tags")
	}
	if params.ParentID != nil {
		exists, err := s.tasks.Exists(*params.ParentID)
		if err != nil {
			return s.internal("create task", err)
		}
		if !exists {
			return fail(ErrNotFound, fmt.Sprintf("Parent task %d not found", *params.ParentID))
		}
		task.ParentID = params.ParentID
	}
	if params.ClientID != nil {
		if _, err := s.clients.GetByID(*params.ClientID); err != nil {
			if err == repository.ErrClientNotFound {
				return fail(ErrNotFound, fmt.Sprintf("Client %d not found", *params.ClientID))
			}
			return s.internal("create task", err)
		}
	}

	if err := s.tasks.Create(&task); err != nil {
		return s.internal("create task", err)
	}
	s.bus.Publish(events.TaskCreated, task.ID)
	return ok(taskDTO(&task), fmt.Sprintf("Task %d created", task.ID))
}

// CreateSubtask creates a task nested under an existing parent.
func (s *TaskService) CreateSubtask(parentID uint, description string) Result {
	return s.CreateTask(CreateTaskParams{Description: description, ParentID: &parentID})
}

func (s *TaskService) GetTask(id uint) Result {
	task, err := s.tasks.GetByID(id)
	if err != nil {
		return s.taskError("get task", id, err)
	}
	return ok(taskDTO(task), fmt.Sprintf("Task %d", id))
}

func (s *TaskService) ListTasks(filter repository.TaskFilter) Result {
	if filter.Priority != "" && !constants.ValidPriority(filter.Priority) {
		return fail(ErrValidation, invalidPriorityMessage(filter.Priority))
	}
	if filter.Status != "" && !constants.ValidStatus(filter.Status) {
		return fail(ErrValidation, invalidStatusMessage(filter.Status))
	}
	tasks, err := s.tasks.List(filter)
	if err != nil {
		return s.internal("list tasks", err)
	}
	return ok(taskListDTO(tasks), fmt.Sprintf("%d task(s)", len(tasks)))
}

// TasksByPriorityRange returns tasks whose priority lies between the
// two labels inclusive, compared by rank.
func (s *TaskService) TasksByPriorityRange(minPriority, maxPriority string) Result {
	min, okMin := constants.PriorityRanks[minPriority]
	max, okMax := constants.PriorityRanks[maxPriority]
	if !okMin {
		return fail(ErrValidation, invalidPriorityMessage(minPriority))
	}
	if !okMax {
		return fail(ErrValidation, invalidPriorityMessage(maxPriority))
	}
	if min > max {
		return fail(ErrValidation, "Minimum priority must not rank above maximum")
	}
	tasks, err := s.tasks.ListByPriorityRange(min, max)
	if err != nil {
		return s.internal("list tasks by priority range", err)
	}
	return ok(taskListDTO(tasks), fmt.Sprintf("%d task(s)", len(tasks)))
}

func (s *TaskService) UpdateDescription(id uint, description string) Result {
	if description == "" {
		return fail(ErrValidation, "Description cannot be empty")
	}
	return s.mutate("update description", id, func(task *models.Task) Result {
		task.Description = description
		return Result{OK: true, Message: fmt.Sprintf("Task %d updated", id)}
	})
}

func (s *TaskService) UpdatePriority(id uint, priority string) Result {
	if !constants.ValidPriority(priority) {
		return fail(ErrValidation, invalidPriorityMessage(priority))
	}
	return s.mutate("update priority", id, func(task *models.Task) Result {
		task.Priority = constants.PriorityRanks[priority]
		return Result{OK: true, Message: fmt.Sprintf("Task %d priority set to %s", id, priority)}
	})
}

func (s *TaskService) UpdateStatus(id uint, status string) Result {
	if !constants.ValidStatus(status) {
		return fail(ErrValidation, invalidStatusMessage(status))
	}
	return s.mutate("update status", id, func(task *models.Task) Result {
		task.Status = status
		task.Done = status == constants.StatusDone
		return Result{OK: true, Message: fmt.Sprintf("Task %d status set to %s", id, status)}
	})
}

func (s *TaskService) UpdateCategory(id uint, category string) Result {
	if len(category) > 100 {
		return fail(ErrValidation, "Category too long (max 100 characters)")
	}
	return s.mutate("update category", id, func(task *models.Task) Result {
		task.Category = category
		return Result{OK: true, Message: fmt.Sprintf("Task %d category set to %s", id, category)}
	})
}

func (s *TaskService) UpdateDueDate(id uint, due time.Time) Result {
	if due.Before(time.Now()) {
		return fail(ErrValidation, "Due date cannot be in the past")
	}
	return s.mutate("update due date", id, func(task *models.Task) Result {
		task.DueDate = &due
		return Result{OK: true, Message: fmt.Sprintf("Task %d due %s", id, due.Format("2006-01-02"))}
	})
}

func (s *TaskService) SetEstimate(id uint, hours float64) Result {
	if hours < 0 {
		return fail(ErrValidation, "Estimated hours cannot be negative")
	}
	return s.mutate("set estimate", id, func(task *models.Task) Result {
		task.EstimatedHours = &hours
		return Result{OK: true, Message: fmt.Sprintf("Task %d estimated at %.2f hours", id, hours)}
	})
}

func (s *TaskService) SetTags(id uint, tags []string) Result {
	return s.mutate("set tags", id, func(task *models.Task) Result {
		if err := task.SetTags(tags); err != nil {
			return fail(ErrValidation, "Invalid tags")
		}
		return Result{OK: true, Message: fmt.Sprintf("Task %d tags updated", id)}
	})
}

// MarkDone completes the task and publishes task.completed.
func (s *TaskService) MarkDone(id uint) Result {
	res := s.mutate("mark done", id, func(task *models.Task) Result {
		task.Done = true
		task.Status = constants.StatusDone
		return Result{OK: true, Message: fmt.Sprintf("Task %d marked done", id)}
	})
	if res.OK {
		s.bus.Publish(events.TaskCompleted, id)
	}
	return res
}

func (s *TaskService) DeleteTask(id uint) Result {
	if err := s.tasks.Delete(id); err != nil {
		return s.taskError("delete task", id, err)
	}
	s.bus.Publish(events.TaskDeleted, id)
	return ok(nil, fmt.Sprintf("Task %d deleted", id))
}

func (s *TaskService) AssignClient(taskID, clientID uint) Result {
	if _, err := s.clients.GetByID(clientID); err != nil {
		if err == repository.ErrClientNotFound {
			return fail(ErrNotFound, fmt.Sprintf("Client %d not found", clientID))
		}
		return s.internal("assign client", err)
	}
	return s.mutate("assign client", taskID, func(task *models.Task) Result {
		task.ClientID = &clientID
		return Result{OK: true, Message: fmt.Sprintf("Task %d assigned to client %d", taskID, clientID)}
	})
}

func (s *TaskService) UnassignClient(taskID uint) Result {
	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return s.taskError("unassign client", taskID, err)
	}
	if task.ClientID == nil {
		return fail(ErrConflict, fmt.Sprintf("Task %d has no client assigned", taskID))
	}
	if err := s.tasks.DB.Model(task).Update("client_id", nil).Error; err != nil {
		return s.internal("unassign client", err)
	}
	s.bus.Publish(events.TaskEdited, taskID)
	return ok(nil, fmt.Sprintf("Task %d unassigned", taskID))
}

func (s *TaskService) AddComment(taskID uint, text string) Result {
	if text == "" {
		return fail(ErrValidation, "Comment cannot be empty")
	}
	exists, err := s.tasks.Exists(taskID)
	if err != nil {
		return s.internal("add comment", err)
	}
	if !exists {
		return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
	}
	comment, err := s.tasks.AddComment(taskID, text)
	if err != nil {
		return s.internal("add comment", err)
	}
	return ok(commentDTO(comment), fmt.Sprintf("Comment added to task %d", taskID))
}

func (s *TaskService) ListComments(taskID uint) Result {
	exists, err := s.tasks.Exists(taskID)
	if err != nil {
		return s.internal("list comments", err)
	}
	if !exists {
		return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
	}
	comments, err := s.tasks.ListComments(taskID)
	if err != nil {
		return s.internal("list comments", err)
	}
	dtos := make([]map[string]any, 0, len(comments))
	for i := range comments {
		dtos = append(dtos, commentDTO(&comments[i]))
	}
	return ok(dtos, fmt.Sprintf("%d comment(s)", len(dtos)))
}

// AddDependency records that taskID depends on dependencyID. Self
// pairs, duplicates, and anything that would close a cycle are
// rejected.
func (s *TaskService) AddDependency(taskID, dependencyID uint) Result {
	if taskID == dependencyID {
		return fail(ErrConflict, "A task cannot depend on itself")
	}
	for _, id := range []uint{taskID, dependencyID} {
		exists, err := s.tasks.Exists(id)
		if err != nil {
			return s.internal("add dependency", err)
		}
		if !exists {
			return fail(ErrNotFound, fmt.Sprintf("Task %d not found", id))
		}
	}
	duplicate, err := s.tasks.DependencyExists(taskID, dependencyID)
	if err != nil {
		return s.internal("add dependency", err)
	}
	if duplicate {
		return fail(ErrConflict, fmt.Sprintf("Task %d already depends on task %d", taskID, dependencyID))
	}
	cyclic, err := s.wouldCycle(taskID, dependencyID)
	if err != nil {
		return s.internal("add dependency", err)
	}
	if cyclic {
		return fail(ErrConflict, fmt.Sprintf("Dependency %d -> %d would create a cycle", taskID, dependencyID))
	}
	if err := s.tasks.AddDependency(taskID, dependencyID); err != nil {
		return s.internal("add dependency", err)
	}
	return ok(nil, fmt.Sprintf("Task %d now depends on task %d", taskID, dependencyID))
}

// wouldCycle reports whether dependencyID already reaches taskID
// through existing edges, which would make the new edge circular.
func (s *TaskService) wouldCycle(taskID, dependencyID uint) (bool, error) {
	edges, err := s.tasks.DependencyEdges()
	if err != nil {
		return false, err
	}
	seen := map[uint]bool{}
	stack := []uint{dependencyID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == taskID {
			return true, nil
		}
		if seen[current] {
			continue
		}
		seen[current] = true
		stack = append(stack, edges[current]...)
	}
	return false, nil
}

func (s *TaskService) ListDependencies(taskID uint) Result {
	exists, err := s.tasks.Exists(taskID)
	if err != nil {
		return s.internal("list dependencies", err)
	}
	if !exists {
		return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
	}
	ids, err := s.tasks.Dependencies(taskID)
	if err != nil {
		return s.internal("list dependencies", err)
	}
	return ok(ids, fmt.Sprintf("%d dependenc(ies)", len(ids)))
}

// Start begins time tracking on the task.
func (s *TaskService) Start(taskID uint) Result {
	started, err := s.tracker.Start(taskID)
	if err != nil {
		switch err {
		case repository.ErrTaskNotFound:
			return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
		case repository.ErrAlreadyStarted:
			return fail(ErrConflict, fmt.Sprintf("Time tracking already started for task %d", taskID))
		}
		return s.internal("start time tracking", err)
	}
	return ok(map[string]any{"started_at": started.Format(time.RFC3339)},
		fmt.Sprintf("Started tracking task %d", taskID))
}

// Stop ends the running session and reports the elapsed duration.
func (s *TaskService) Stop(taskID uint) Result {
	elapsed, err := s.tracker.Stop(taskID)
	if err != nil {
		switch err {
		case repository.ErrTaskNotFound:
			return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
		case repository.ErrNotStarted:
			return fail(ErrConflict, fmt.Sprintf("Time tracking not started for task %d", taskID))
		}
		return s.internal("stop time tracking", err)
	}
	return ok(map[string]any{"hours": elapsed.Hours()},
		fmt.Sprintf("Stopped tracking task %d after %.2f hours", taskID, elapsed.Hours()))
}

func (s *TaskService) AddTimeEntry(taskID uint, start, end time.Time, description string) Result {
	entry, err := s.tracker.AddManualEntry(taskID, start, end, description)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
		}
		return s.internal("add time entry", err)
	}
	return ok(timeEntryDTO(entry), fmt.Sprintf("Logged %d minute(s) on task %d", entry.DurationMinutes, taskID))
}

func (s *TaskService) TimeSummary(taskID uint) Result {
	summary, err := s.tracker.Summary(taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			return fail(ErrNotFound, fmt.Sprintf("Task %d not found", taskID))
		}
		return s.internal("time summary", err)
	}
	return ok(summary, fmt.Sprintf("Time summary for task %d", taskID))
}

// mutate loads, applies, and saves in one place so every update path
// shares the not-found handling and the task.edited notification.
func (s *TaskService) mutate(op string, id uint, apply func(*models.Task) Result) Result {
	task, err := s.tasks.GetByID(id)
	if err != nil {
		return s.taskError(op, id, err)
	}
	res := apply(task)
	if !res.OK {
		return res
	}
	if err := s.tasks.Save(task); err != nil {
		return s.internal(op, err)
	}
	s.bus.Publish(events.TaskEdited, id)
	if res.Data == nil {
		res.Data = taskDTO(task)
	}
	return res
}

func (s *TaskService) taskError(op string, id uint, err error) Result {
	if err == repository.ErrTaskNotFound {
		return fail(ErrNotFound, fmt.Sprintf("Task %d not found", id))
	}
	return s.internal(op, err)
}

func (s *TaskService) internal(op string, err error) Result {
	slog.Error("task service failure", "op", op, "err", err)
	return fail(ErrInternal, "Something went wrong, please try again")
}

func invalidPriorityMessage(priority string) string {
	return fmt.Sprintf("Invalid priority %q: must be one of Low, Medium, High, Critical", priority)
}

func invalidStatusMessage(status string) string {
	return fmt.Sprintf("Invalid status %q: must be one of Todo, In Progress, Review, Done", status)
}
