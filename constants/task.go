package constants

// Task priorities form a total order; the rank is what gets stored and
// what range queries compare against.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

var PriorityRanks = map[string]int{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// PriorityName returns the label for a stored rank, or "" for an
// unknown rank.
func PriorityName(rank int) string {
	for name, r := range PriorityRanks {
		if r == rank {
			return name
		}
	}
	return ""
}

const (
	StatusTodo       = "Todo"
	StatusInProgress = "In Progress"
	StatusReview     = "Review"
	StatusDone       = "Done"
)

var TaskStatuses = []string{
	StatusTodo,
	StatusInProgress,
	StatusReview,
	StatusDone,
}

func ValidStatus(status string) bool {
	for _, s := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func ValidPriority(priority string) bool {
	_, ok := PriorityRanks[priority]
	return ok
}
