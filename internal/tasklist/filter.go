package tasklist

import (
	"strings"

	"todotxt/internal/task"
)

// Filter keeps the tasks whose raw text contains every term, ignoring case.
// A term starting with "-" excludes tasks that contain the rest of it.
func Filter(tasks []*task.Task, terms ...string) []*task.Task {
	var out []*task.Task
	for _, t := range tasks {
		if matches(t.RawText(), terms) {
			out = append(out, t)
		}
	}
	return out
}

func matches(raw string, terms []string) bool {
	raw = strings.ToLower(raw)
	for _, term := range terms {
		term = strings.ToLower(term)
		if exclude, ok := strings.CutPrefix(term, "-"); ok && exclude != "" {
			if strings.Contains(raw, exclude) {
				return false
			}
			continue
		}
		if !strings.Contains(raw, term) {
			return false
		}
	}
	return true
}
