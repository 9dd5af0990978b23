// Package tasklist holds an ordered, observable list of todo.txt tasks.
package tasklist

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"todotxt/internal/observable"
	"todotxt/internal/task"
)

// Change is the notification a TaskList publishes.
type Change = observable.Change[*task.Task]

// DefaultLineEnding is the platform newline.
var DefaultLineEnding = platformLineEnding()

func platformLineEnding() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// TaskList is an in-memory todo.txt file. Every task it holds has an id,
// assigned as the list length plus one at the time it was appended. Ids are
// not renumbered when tasks are removed.
type TaskList struct {
	items      *observable.List[*task.Task, task.Field]
	meta       *Metadata
	lineEnding string
}

func New() *TaskList {
	l := &TaskList{
		// Only a raw text change means the line changed. Every other field
		// follows from it and would just repeat the notification.
		items: observable.New[*task.Task, task.Field](observable.WithFieldFilter(func(f task.Field) bool {
			return f == task.FieldRawText
		})),
		meta:       &Metadata{},
		lineEnding: DefaultLineEnding,
	}
	// Registered first so metadata is current for every other subscriber.
	l.items.Subscribe(func(Change) { l.meta.rebuild(l.items.Items()) })
	return l
}

// FromString builds a list from the contents of a todo.txt file.
func FromString(s string) *TaskList {
	l := New()
	l.AppendString(s)
	return l
}

func (l *TaskList) PreferredLineEnding() string { return l.lineEnding }

func (l *TaskList) SetPreferredLineEnding(ending string) { l.lineEnding = ending }

func (l *TaskList) Len() int { return l.items.Len() }

func (l *TaskList) At(i int) *task.Task { return l.items.At(i) }

// Tasks returns the tasks in file order.
func (l *TaskList) Tasks() []*task.Task { return l.items.Items() }

// Metadata returns the index of projects, contexts and priorities. It is
// rebuilt before any subscriber hears about a change.
func (l *TaskList) Metadata() *Metadata { return l.meta }

// IndexOf locates t by identity, then by equality.
func (l *TaskList) IndexOf(t *task.Task) int { return l.items.IndexOf(t) }

// Find returns the first task carrying id.
func (l *TaskList) Find(id int) (*task.Task, bool) {
	for _, t := range l.items.Items() {
		if got, ok := t.ID(); ok && got == id {
			return t, true
		}
	}
	return nil, false
}

func (l *TaskList) Subscribe(fn func(Change)) (cancel func()) {
	return l.items.Subscribe(fn)
}

// Append assigns ids and adds tasks at the end, publishing one Add. Nil
// tasks are skipped.
func (l *TaskList) Append(tasks ...*task.Task) {
	batch := l.numbered(l.Len(), tasks)
	l.items.Append(batch...)
}

func (l *TaskList) numbered(start int, tasks []*task.Task) []*task.Task {
	batch := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		t.SetID(start + len(batch) + 1)
		batch = append(batch, t)
	}
	return batch
}

// AppendLines adds one task per line.
func (l *TaskList) AppendLines(lines []string) {
	if lines == nil {
		return
	}
	tasks := make([]*task.Task, 0, len(lines))
	for _, line := range lines {
		tasks = append(tasks, task.New(line))
	}
	l.Append(tasks...)
}

// AppendString splits s on "\r\n", "\r" or "\n" and adds one task per line.
// A trailing line break yields a trailing blank task.
func (l *TaskList) AppendString(s string) {
	l.AppendLines(SplitLines(s))
}

// AppendReader reads r to the end and appends its contents. The list is
// left untouched when the read fails.
func (l *TaskList) AppendReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read task list: %w", err)
	}
	l.AppendString(string(data))
	return nil
}

// SplitLines splits s on any of the three conventional line breaks.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// Remove deletes each task matched by identity or equality and publishes
// one Remove for the batch. It reports how many tasks were removed.
func (l *TaskList) Remove(tasks ...*task.Task) int {
	return l.items.Remove(tasks...)
}

// ReplaceAll swaps the contents for tasks, numbering them from 1. One Reset
// is published.
func (l *TaskList) ReplaceAll(tasks ...*task.Task) {
	l.items.ReplaceAll(l.numbered(0, tasks)...)
}

// Clear empties the list. Together with Append it is the reload primitive.
func (l *TaskList) Clear() { l.items.Clear() }

// Set replaces the task at index i.
func (l *TaskList) Set(i int, t *task.Task) error {
	if err := l.items.Set(i, t); err != nil {
		return fmt.Errorf("set task %d: %w", i, err)
	}
	return nil
}

func (l *TaskList) ReplaceItem(old, replacement *task.Task) error {
	if err := l.items.ReplaceItem(old, replacement); err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	return nil
}

func (l *TaskList) ReplaceItems(olds, replacements []*task.Task) error {
	if err := l.items.ReplaceItems(olds, replacements); err != nil {
		return fmt.Errorf("replace tasks: %w", err)
	}
	return nil
}

// String renders the file: raw lines joined by the preferred line ending.
func (l *TaskList) String() string {
	tasks := l.items.Items()
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = t.RawText()
	}
	return strings.Join(lines, l.lineEnding)
}

// UpdateSelected applies cmd to a copy of every selected task found in the
// list and swaps the copies in with a single Replace notification. Entries
// of selected are updated in place to point at the copies; entries not
// found are left alone.
func (l *TaskList) UpdateSelected(selected []*task.Task, cmd Command) error {
	if selected == nil {
		return fmt.Errorf("update selected: %w", observable.ErrNilArgument)
	}

	var olds, news []*task.Task
	copies := make(map[int]*task.Task)
	refreshed := make(map[int]*task.Task)
	for i, sel := range selected {
		if sel == nil {
			continue
		}
		at := l.IndexOf(sel)
		if at < 0 {
			continue
		}
		c, ok := copies[at]
		if !ok {
			old := l.At(at)
			c = old.Clone()
			Apply(c, cmd)
			copies[at] = c
			olds = append(olds, old)
			news = append(news, c)
		}
		refreshed[i] = c
	}
	if len(olds) == 0 {
		return nil
	}
	if err := l.ReplaceItems(olds, news); err != nil {
		return err
	}
	for i, c := range refreshed {
		selected[i] = c
	}
	return nil
}
