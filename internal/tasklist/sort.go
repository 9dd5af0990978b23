package tasklist

import (
	"fmt"
	"slices"
	"strings"

	"todotxt/internal/task"
)

// SortKey selects a display order. The file order is never changed.
type SortKey string

const (
	SortNone     SortKey = "none"
	SortText     SortKey = "text"
	SortPriority SortKey = "priority"
	SortDue      SortKey = "due"
	SortCreated  SortKey = "created"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortNone:
		return SortNone, nil
	case SortText, SortPriority, SortDue, SortCreated:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Sorted returns the tasks ordered by key. Completed tasks sink to the
// bottom for every key but text and none; ties fall back to Compare.
func Sorted(tasks []*task.Task, key SortKey) []*task.Task {
	out := slices.Clone(tasks)
	switch key {
	case SortText:
		slices.SortStableFunc(out, task.Compare)
	case SortPriority:
		slices.SortStableFunc(out, by(func(a, b *task.Task) int {
			return int(a.Priority()) - int(b.Priority())
		}))
	case SortDue:
		slices.SortStableFunc(out, by(func(a, b *task.Task) int {
			return a.DueDate().Compare(b.DueDate())
		}))
	case SortCreated:
		slices.SortStableFunc(out, by(func(a, b *task.Task) int {
			return a.CreationDate().Compare(b.CreationDate())
		}))
	}
	return out
}

func by(primary func(a, b *task.Task) int) func(a, b *task.Task) int {
	return func(a, b *task.Task) int {
		if a.IsCompleted() != b.IsCompleted() {
			if a.IsCompleted() {
				return 1
			}
			return -1
		}
		if c := primary(a, b); c != 0 {
			return c
		}
		return task.Compare(a, b)
	}
}
