package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/larryflorio/larrybot/repository"
	"github.com/larryflorio/larrybot/service"
)

// Reply renders a service Result as chat text. Failures show the
// service message as-is; successes show the message plus a compact
// rendering of any structured payload.
func Reply(res service.Result) string {
	if !res.OK {
		return "❌ " + res.Message
	}
	body := formatData(res.Data)
	if body == "" {
		return "✅ " + res.Message
	}
	return "✅ " + res.Message + "\n" + body
}

func formatData(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case []map[string]any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			lines = append(lines, "• "+formatRecord(item))
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		return formatRecord(v)
	case []uint:
		parts := make([]string, 0, len(v))
		for _, id := range v {
			parts = append(parts, fmt.Sprintf("#%d", id))
		}
		return strings.Join(parts, ", ")
	case *repository.TimeSummary:
		return fmt.Sprintf("estimated %.2fh, actual %.2fh, logged %dm over %d entr(ies), %d comment(s), efficiency %.0f%%",
			v.EstimatedHours, v.ActualHours, v.TotalMinutes, v.EntryCount, v.CommentCount, v.Efficiency)
	case *repository.AttachmentStats:
		exts := make([]string, 0, len(v.Extensions))
		for ext, n := range v.Extensions {
			exts = append(exts, fmt.Sprintf("%s×%d", ext, n))
		}
		sort.Strings(exts)
		return fmt.Sprintf("%d file(s), %d bytes [%s]", v.Count, v.TotalSize, strings.Join(exts, " "))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatRecord prints the fields chat users care about, in a stable
// order, falling back to key=value for anything else.
func formatRecord(record map[string]any) string {
	if desc, okDesc := record["description"]; okDesc {
		if id, okID := record["id"]; okID {
			parts := []string{fmt.Sprintf("#%v %v", id, desc)}
			if p, ok := record["priority"]; ok && p != "" {
				parts = append(parts, fmt.Sprintf("[%v]", p))
			}
			if s, ok := record["status"]; ok && s != "" {
				parts = append(parts, fmt.Sprintf("(%v)", s))
			}
			if d, ok := record["due_date"]; ok {
				parts = append(parts, fmt.Sprintf("due %v", d))
			}
			return strings.Join(parts, " ")
		}
	}
	if text, ok := record["comment"]; ok {
		return fmt.Sprintf("%v: %v", record["created_at"], text)
	}
	if name, ok := record["original_filename"]; ok {
		return fmt.Sprintf("#%v %v (%v bytes)", record["id"], name, record["size"])
	}
	if name, ok := record["name"]; ok {
		return fmt.Sprintf("#%v %v", record["id"], name)
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, record[k]))
	}
	return strings.Join(parts, " ")
}
