package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todotxt/internal/config"
	"todotxt/internal/task"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dueTodayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	hiddenStyle    = lipgloss.NewStyle().Faint(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("todo.txt • %s", m.store.Path())))
	if m.sortKey != "" && m.sortKey != "none" {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  sorted by %s", m.sortKey)))
	}
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add)))
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n")

	switch {
	case m.meta != nil:
		b.WriteString("Metadata editor (tab/shift+tab to move, enter to save/next, esc to cancel)")
		b.WriteString("\n\n")
		b.WriteString(m.renderMetaBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.meta.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.mode == modeAdd || m.mode == modeRename:
		b.WriteString(m.input.View())
	case m.listMeta:
		b.WriteString(panelStyle.Render(m.renderListMetadata()))
	default:
		b.WriteString(panelStyle.Render(m.renderMetadataPanel()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s/%s priority • %s/%s due • %s/%s threshold • %s edit • %s rename • %s delete • %s archive • %s/%s/%s/%s sort • %s lists • %s quit",
		k.Up, k.Down, k.Add, keyName(k.Toggle), k.PriorityUp, k.PriorityDown, k.DueForward, k.DueBack,
		k.ThresholdFwd, k.ThresholdBack, k.Edit, k.Rename, k.Delete, k.Archive,
		k.SortDue, k.SortPriority, k.SortCreated, k.SortText, k.ToggleMetadata, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = cursorStyle.Render(">")
		}

		checkbox := "[ ]"
		if t.IsCompleted() {
			checkbox = "[x]"
		}

		id, _ := t.ID()
		b.WriteString(fmt.Sprintf("%s %s %3d %s\n", cursor, checkbox, id, rowStyle(t).Render(t.RawText())))
	}
	return b.String()
}

// rowStyle picks the style that says the most about a task: completion
// first, then hidden by threshold, then due state.
func rowStyle(t *task.Task) lipgloss.Style {
	switch {
	case t.IsCompleted():
		return completedStyle
	case t.ThresholdState() == task.BeforeThresholdDate:
		return hiddenStyle
	case t.DueState() == task.Overdue:
		return overdueStyle
	case t.DueState() == task.DueToday:
		return dueTodayStyle
	default:
		return lipgloss.NewStyle()
	}
}

func (m Model) renderMetaBox() string {
	if m.meta == nil {
		return ""
	}
	values := []string{m.meta.priority, m.meta.due, m.meta.threshold}
	var b strings.Builder
	for i, name := range metaFields() {
		prefix := " "
		if i == m.meta.index {
			prefix = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-24s : %s\n", prefix, name, emptyPlaceholder(values[i])))
	}
	return b.String()
}

func (m Model) renderMetadataPanel() string {
	t := m.selected()
	if t == nil {
		return "No task selected"
	}
	priority := "(empty)"
	if t.IsPrioritized() {
		priority = string(t.Priority())
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Status    : %s\n", humanDone(t.IsCompleted())))
	b.WriteString(fmt.Sprintf("Priority  : %s\n", priority))
	b.WriteString(fmt.Sprintf("Projects  : %s\n", emptyPlaceholder(strings.Join(t.Projects(), " "))))
	b.WriteString(fmt.Sprintf("Contexts  : %s\n", emptyPlaceholder(strings.Join(t.Contexts(), " "))))
	b.WriteString(fmt.Sprintf("Created   : %s\n", emptyPlaceholder(t.CreationDateText())))
	if t.IsCompleted() {
		b.WriteString(fmt.Sprintf("Completed : %s\n", emptyPlaceholder(t.CompletionDateText())))
	}
	b.WriteString(fmt.Sprintf("Due       : %s\n", dateWithState(t.DueDateText(), t.DueState().String())))
	b.WriteString(fmt.Sprintf("Threshold : %s", dateWithState(t.ThresholdDateText(), t.ThresholdState().String())))
	return b.String()
}

// renderListMetadata shows what the whole list uses, for picking projects
// and contexts while typing.
func (m Model) renderListMetadata() string {
	meta := m.list.Metadata()
	priorities := make([]string, 0, len(meta.Priorities()))
	for _, p := range meta.Priorities() {
		priorities = append(priorities, string(p))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Projects   : %s\n", emptyPlaceholder(strings.Join(meta.Projects(), " "))))
	b.WriteString(fmt.Sprintf("Contexts   : %s\n", emptyPlaceholder(strings.Join(meta.Contexts(), " "))))
	b.WriteString(fmt.Sprintf("Priorities : %s", emptyPlaceholder(strings.Join(priorities, " "))))
	return b.String()
}

func dateWithState(text, state string) string {
	if text == "" {
		return "(empty)"
	}
	return text + " (" + state + ")"
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
