// Package bot adapts chat commands to service calls. Each handler gets
// the already-tokenized argument list from the dispatch layer, parses
// ids and dates, calls exactly one service method, and renders the
// result as reply text.
package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/larryflorio/larrybot/repository"
	"github.com/larryflorio/larrybot/service"
)

// Context is what a handler needs beyond its arguments: the services
// and, for file commands, the uploaded content the transport received.
type Context struct {
	Tasks       *service.TaskService
	Attachments *service.AttachmentService
	Clients     *service.ClientService

	FileContent []byte
	FileName    string
}

type HandlerFunc func(ctx *Context, args []string) string

// Commands returns the full command registry the dispatch layer
// registers at startup.
func Commands() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"addtask":      AddTask,
		"subtask":      AddSubtask,
		"list":         ListTasks,
		"task":         ShowTask,
		"done":         MarkDone,
		"remove":       RemoveTask,
		"priority":     SetPriority,
		"status":       SetStatus,
		"due":          SetDueDate,
		"category":     SetCategory,
		"estimate":     SetEstimate,
		"tags":         SetTags,
		"comment":      AddComment,
		"comments":     ListComments,
		"depend":       AddDependency,
		"dependencies": ListDependencies,
		"start":        StartTracking,
		"stop":         StopTracking,
		"logtime":      LogTime,
		"timesummary":  TimeSummary,
		"attach":       AttachFile,
		"attachments":  ListAttachments,
		"detach":       RemoveAttachment,
		"filestats":    AttachmentStats,
		"addclient":    AddClient,
		"clients":      ListClients,
		"assign":       AssignClient,
		"unassign":     UnassignClient,
	}
}

func AddTask(ctx *Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /addtask <description>"
	}
	res := ctx.Tasks.CreateTask(service.CreateTaskParams{Description: strings.Join(args, " ")})
	return Reply(res)
}

func AddSubtask(ctx *Context, args []string) string {
	if len(args) < 2 {
		return "Usage: /subtask <parent_id> <description>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.CreateSubtask(id, strings.Join(args[1:], " ")))
}

func ListTasks(ctx *Context, args []string) string {
	filter := repository.TaskFilter{SortBy: "created_at", SortOrder: "asc"}
	// Optional flag pairs: status <s>, priority <p>, category <c>, tag <t>...
	for i := 0; i+1 < len(args); i += 2 {
		switch args[i] {
		case "status":
			filter.Status = args[i+1]
		case "priority":
			filter.Priority = args[i+1]
		case "category":
			filter.Category = args[i+1]
		case "tag":
			filter.Tags = append(filter.Tags, args[i+1])
			filter.TagMatch = repository.MatchAny
		case "overdue":
			if args[i+1] == "yes" {
				filter.OverdueOnly = true
			}
		case "limit":
			if n, err := strconv.Atoi(args[i+1]); err == nil {
				filter.Limit = n
			}
		}
	}
	return Reply(ctx.Tasks.ListTasks(filter))
}

func ShowTask(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /task <id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.GetTask(id))
}

func MarkDone(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /done <id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.MarkDone(id))
}

func RemoveTask(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /remove <id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.DeleteTask(id))
}

func SetPriority(ctx *Context, args []string) string {
	if len(args) != 2 {
		return "Usage: /priority <id> <Low|Medium|High|Critical>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.UpdatePriority(id, args[1]))
}

func SetStatus(ctx *Context, args []string) string {
	if len(args) < 2 {
		return "Usage: /status <id> <status>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.UpdateStatus(id, strings.Join(args[1:], " ")))
}

func SetDueDate(ctx *Context, args []string) string {
	if len(args) != 2 {
		return "Usage: /due <id> <YYYY-MM-DD>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	due, err := parseDate(args[1])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.UpdateDueDate(id, due))
}

func SetCategory(ctx *Context, args []string) string {
	if len(args) < 2 {
		return "Usage: /category <id> <category>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.UpdateCategory(id, strings.Join(args[1:], " ")))
}

func SetEstimate(ctx *Context, args []string) string {
	if len(args) != 2 {
		return "Usage: /estimate <id> <hours>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	hours, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "Hours must be a number"
	}
	return Reply(ctx.Tasks.SetEstimate(id, hours))
}

func SetTags(ctx *Context, args []string) string {
	if len(args) < 1 {
		return "Usage: /tags <id> [tag ...]"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.SetTags(id, args[1:]))
}

func AddComment(ctx *Context, args []string) string {
	if len(args) < 2 {
		return "Usage: /comment <id> <text>"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.AddComment(id, strings.Join(args[1:], " ")))
}

func ListComments(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /comments <id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.ListComments(id))
}

func AddDependency(ctx *Context, args []string) string {
	if len(args) != 2 {
		return "Usage: /depend <task_id> <dependency_id>"
	}
	taskID, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	depID, err := parseID(args[1])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.AddDependency(taskID, depID))
}

func ListDependencies(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /dependencies <id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.ListDependencies(id))
}

func StartTracking(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /start <id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.Start(id))
}

func StopTracking(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /stop <id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.Stop(id))
}

func LogTime(ctx *Context, args []string) string {
	if len(args) < 3 {
		return "Usage: /logtime <id> <start> <end> [description] (times as 2006-01-02T15:04)"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	start, err := parseDateTime(args[1])
	if err != nil {
		return err.Error()
	}
	end, err := parseDateTime(args[2])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.AddTimeEntry(id, start, end, strings.Join(args[3:], " ")))
}

func TimeSummary(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /timesummary <id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.TimeSummary(id))
}

func AttachFile(ctx *Context, args []string) string {
	if len(args) < 1 {
		return "Usage: /attach <task_id> [description] (with a file upload)"
	}
	if len(ctx.FileContent) == 0 || ctx.FileName == "" {
		return "Attach a file to the message"
	}
	id, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Attachments.Attach(id, ctx.FileContent, ctx.FileName, strings.Join(args[1:], " "), false))
}

func ListAttachments(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /attachments <task_id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Attachments.ListForTask(id))
}

func RemoveAttachment(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /detach <attachment_id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Attachments.Remove(id))
}

func AttachmentStats(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /filestats <task_id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Attachments.Stats(id))
}

func AddClient(ctx *Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /addclient <name>"
	}
	return Reply(ctx.Clients.Create(strings.Join(args, " ")))
}

func ListClients(ctx *Context, args []string) string {
	return Reply(ctx.Clients.List())
}

func AssignClient(ctx *Context, args []string) string {
	if len(args) != 2 {
		return "Usage: /assign <task_id> <client_id>"
	}
	taskID, err := parseID(args[0])
	if err != nil {
		return err.Error()
	}
	clientID, err := parseID(args[1])
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.AssignClient(taskID, clientID))
}

func UnassignClient(ctx *Context, args []string) string {
	id, err := oneID(args, "Usage: /unassign <task_id>")
	if err != nil {
		return err.Error()
	}
	return Reply(ctx.Tasks.UnassignClient(id))
}

func parseID(arg string) (uint, error) {
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a task id", arg)
	}
	return uint(n), nil
}

func oneID(args []string, usage string) (uint, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s", usage)
	}
	return parseID(args[0])
}

func parseDate(arg string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", arg, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date (want YYYY-MM-DD)", arg)
	}
	// End of day so "today" is never rejected as past.
	return t.Add(23*time.Hour + 59*time.Minute + 59*time.Second), nil
}

func parseDateTime(arg string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04", arg, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a timestamp (want 2006-01-02T15:04)", arg)
	}
	return t, nil
}
