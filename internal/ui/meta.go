package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"todotxt/internal/task"
	"todotxt/internal/tasklist"
)

type metaState struct {
	target    *task.Task
	priority  string
	due       string
	threshold string
	index     int
}

func metaFields() []string {
	return []string{"priority (A-Z)", "due date (YYYY-MM-DD)", "threshold (YYYY-MM-DD)"}
}

func (m Model) startMetadataEdit(t *task.Task) (tea.Model, tea.Cmd) {
	m.meta = &metaState{
		target:    t,
		due:       t.DueDateText(),
		threshold: t.ThresholdDateText(),
	}
	if t.IsPrioritized() {
		m.meta.priority = string(t.Priority())
	}
	m.input.SetValue(m.meta.currentValue())
	m.input.CursorEnd()
	m.input.Placeholder = m.meta.currentLabel()
	m.input.Focus()
	m.mode = modeMetadata
	m.status = "Edit metadata: tab to move, enter to save/next, esc to cancel"
	return m, nil
}

func (m Model) updateMetadataMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.meta = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Edit cancelled"
		m.catchUp()
		return m, nil
	case "tab", "down":
		m.moveMeta(1)
		return m, nil
	case "shift+tab", "up":
		m.moveMeta(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.meta.setCurrentValue(m.input.Value())
		if m.meta.index >= len(metaFields())-1 {
			return m.saveMetadata()
		}
		m.moveMeta(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveMeta(delta int) {
	m.meta.setCurrentValue(m.input.Value())
	m.meta.index = wrapIndex(m.meta.index+delta, len(metaFields()))
	m.input.SetValue(m.meta.currentValue())
	m.input.CursorEnd()
	m.input.Placeholder = m.meta.currentLabel()
	m.status = m.metaPrompt()
}

// saveMetadata validates every field, applies all of them to one copy of
// the task and swaps the copy in, so the list changes at most once.
func (m Model) saveMetadata() (tea.Model, tea.Cmd) {
	cmds, err := m.meta.commands()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	target := m.meta.target
	m.meta = nil
	m.mode = modeList
	m.input.Blur()

	m.catchUp()
	if !m.stillListed(target) {
		return m, nil
	}
	edited := target.Clone()
	for _, cmd := range cmds {
		tasklist.Apply(edited, cmd)
	}
	if edited.RawText() == target.RawText() {
		m.status = "No changes"
		return m, nil
	}
	if err := m.list.ReplaceItem(target, edited); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.changed("Metadata saved")
	m.refresh(edited)
	return m, nil
}

func (ms metaState) commands() ([]tasklist.Command, error) {
	var cmds []tasklist.Command

	switch p := strings.ToUpper(strings.TrimSpace(ms.priority)); {
	case p == "":
		cmds = append(cmds, tasklist.RemovePriority{})
	case utf8.RuneCountInString(p) == 1 && p[0] >= 'A' && p[0] <= 'Z':
		cmds = append(cmds, tasklist.SetPriority{Priority: rune(p[0])})
	default:
		return nil, fmt.Errorf("priority invalid: %q", ms.priority)
	}

	due, err := dateCommand(ms.due, "due date", tasklist.RemoveDueDate{}, func(d time.Time) tasklist.Command {
		return tasklist.SetDueDate{Date: d}
	})
	if err != nil {
		return nil, err
	}
	threshold, err := dateCommand(ms.threshold, "threshold", tasklist.RemoveThresholdDate{}, func(d time.Time) tasklist.Command {
		return tasklist.SetThresholdDate{Date: d}
	})
	if err != nil {
		return nil, err
	}
	return append(cmds, due, threshold), nil
}

// dateCommand maps an empty field to remove and a valid date to set.
func dateCommand(v, label string, remove tasklist.Command, set func(time.Time) tasklist.Command) (tasklist.Command, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return remove, nil
	}
	d, ok := task.ParseDate(v)
	if !ok {
		return nil, fmt.Errorf("%s invalid: %q", label, v)
	}
	return set(d), nil
}

func (ms metaState) currentLabel() string {
	return metaFields()[ms.index]
}

func (ms metaState) currentValue() string {
	switch ms.index {
	case 0:
		return ms.priority
	case 1:
		return ms.due
	case 2:
		return ms.threshold
	default:
		return ""
	}
}

func (ms *metaState) setCurrentValue(v string) {
	switch ms.index {
	case 0:
		ms.priority = v
	case 1:
		ms.due = v
	case 2:
		ms.threshold = v
	}
}

func (m Model) metaPrompt() string {
	if m.meta == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.meta.currentLabel(), m.meta.index+1, len(metaFields()))
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
