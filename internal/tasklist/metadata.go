package tasklist

import (
	"slices"

	"todotxt/internal/task"
)

// Metadata is the set of distinct projects, contexts and priorities across a
// list. It is recomputed in full on every change to the list.
type Metadata struct {
	projects   []string
	contexts   []string
	priorities []rune
}

// Projects returns the distinct projects in ordinal order.
func (m *Metadata) Projects() []string { return slices.Clone(m.projects) }

func (m *Metadata) Contexts() []string { return slices.Clone(m.contexts) }

// Priorities includes task.NoPriority when any task is unprioritized.
func (m *Metadata) Priorities() []rune { return slices.Clone(m.priorities) }

func (m *Metadata) rebuild(tasks []*task.Task) {
	var projects, contexts []string
	var priorities []rune
	for _, t := range tasks {
		projects = append(projects, t.Projects()...)
		contexts = append(contexts, t.Contexts()...)
		priorities = append(priorities, t.Priority())
	}
	m.projects = sortedSet(projects)
	m.contexts = sortedSet(contexts)
	m.priorities = sortedSet(priorities)
}

func sortedSet[E ~string | ~rune](s []E) []E {
	slices.Sort(s)
	return slices.Compact(s)
}
