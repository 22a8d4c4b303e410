package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larryflorio/larrybot/service"
)

func TestReplyFailure(t *testing.T) {
	res := service.Result{OK: false, Kind: service.ErrNotFound, Message: "Task 7 not found"}
	assert.Equal(t, "❌ Task 7 not found", Reply(res))
}

func TestReplySuccessWithTaskList(t *testing.T) {
	res := service.Result{
		OK:      true,
		Message: "2 task(s)",
		Data: []map[string]any{
			{"id": uint(1), "description": "first", "priority": "High", "status": "Todo"},
			{"id": uint(2), "description": "second", "priority": "Low", "status": "Done"},
		},
	}
	reply := Reply(res)
	assert.Contains(t, reply, "✅ 2 task(s)")
	assert.Contains(t, reply, "• #1 first [High] (Todo)")
	assert.Contains(t, reply, "• #2 second [Low] (Done)")
}

func TestReplyCommentListUsesPlainSeparators(t *testing.T) {
	res := service.Result{
		OK:      true,
		Message: "1 comment(s)",
		Data: []map[string]any{
			{"id": uint(1), "task_id": uint(2), "comment": "ship it", "created_at": "2026-08-30T10:00:00Z"},
		},
	}
	reply := Reply(res)
	assert.Contains(t, reply, "• 2026-08-30T10:00:00Z: ship it")
	assert.NotContains(t, reply, "\u2014")
}

func TestHandlersRejectBadArguments(t *testing.T) {
	ctx := &Context{}

	assert.Contains(t, AddTask(ctx, nil), "Usage:")
	assert.Contains(t, MarkDone(ctx, []string{"abc"}), "not a task id")
	assert.Contains(t, SetDueDate(ctx, []string{"1", "tomorrow"}), "not a date")
	assert.Contains(t, LogTime(ctx, []string{"1", "bad", "worse"}), "not a timestamp")
	assert.Contains(t, AddDependency(ctx, []string{"1"}), "Usage:")
}

func TestParseDateEndOfDay(t *testing.T) {
	due, err := parseDate("2030-06-15")
	require.NoError(t, err)
	assert.Equal(t, 23, due.Hour())
	assert.Equal(t, 15, due.Day())
}

func TestCommandRegistryComplete(t *testing.T) {
	commands := Commands()
	for _, name := range []string{
		"addtask", "list", "done", "priority", "status", "due",
		"comment", "depend", "start", "stop", "logtime", "timesummary",
		"attach", "attachments", "detach", "filestats",
	} {
		require.Contains(t, commands, name)
	}
}
