package task

import (
	"strings"
	"time"
)

// Every mutation below computes a new line and assigns it through
// SetRawText.

func (t *Task) AppendText(text string) {
	if t.IsBlank() {
		t.SetRawText(text)
		return
	}
	t.SetRawText(t.raw + " " + text)
}

// PrependText inserts text after the structural prefix of the line:
// completion marker, priority and creation date stay in front.
func (t *Task) PrependText(text string) {
	if t.IsBlank() {
		t.SetRawText(text)
		return
	}

	at := t.prefixLen()
	if at == 0 {
		t.SetRawText(text + " " + t.raw)
		return
	}
	t.SetRawText(strings.Join([]string{t.raw[:at-1], text, t.raw[at:]}, " "))
}

func (t *Task) prefixLen() int {
	hasCreation := t.f.creationDateText != ""
	switch {
	case t.f.isCompleted && hasCreation:
		return completedCreationPrefixLen
	case t.f.isCompleted:
		return completedPrefixLen
	case t.f.isPrioritized && hasCreation:
		return priorityCreationPrefixLen
	case t.f.isPrioritized:
		return priorityPrefixLen
	case hasCreation:
		return creationPrefixLen
	default:
		return 0
	}
}

// ReplaceText replaces every occurrence of old in the line.
func (t *Task) ReplaceText(old, replacement string) {
	if old == "" {
		return
	}
	t.SetRawText(strings.ReplaceAll(t.raw, old, replacement))
}

// MarkComplete drops the priority and prefixes "x <today> ".
func (t *Task) MarkComplete() {
	if t.IsBlank() || t.IsCompleted() {
		return
	}
	rest := t.raw
	if t.IsPrioritized() {
		rest = rest[priorityPrefixLen:]
	}
	t.SetRawText("x " + FormatDate(Today()) + " " + rest)
}

func (t *Task) MarkIncomplete() {
	if t.IsBlank() || !t.IsCompleted() {
		return
	}
	t.SetRawText(t.raw[completedPrefixLen:])
}

func (t *Task) ToggleCompletion() {
	if t.IsCompleted() {
		t.MarkIncomplete()
		return
	}
	t.MarkComplete()
}

// SetPriority sets or replaces the "(X) " prefix. Anything but an uppercase
// ASCII letter is ignored.
func (t *Task) SetPriority(p rune) {
	if p < 'A' || p > 'Z' {
		return
	}
	prefix := "(" + string(p) + ") "
	if t.IsPrioritized() {
		t.SetRawText(prefix + t.raw[priorityPrefixLen:])
		return
	}
	t.SetRawText(prefix + t.raw)
}

func (t *Task) RemovePriority() {
	if t.IsBlank() || t.IsCompleted() || !t.IsPrioritized() {
		return
	}
	t.SetRawText(t.raw[priorityPrefixLen:])
}

// IncreasePriority moves one letter towards A. Unprioritized tasks get A.
func (t *Task) IncreasePriority() {
	if t.IsBlank() || t.IsCompleted() {
		return
	}
	if !t.IsPrioritized() {
		t.SetPriority('A')
		return
	}
	if t.Priority() == 'A' {
		return
	}
	t.SetPriority(t.Priority() - 1)
}

// DecreasePriority moves one letter towards Z. Unprioritized tasks get A.
func (t *Task) DecreasePriority() {
	if t.IsBlank() || t.IsCompleted() {
		return
	}
	if !t.IsPrioritized() {
		t.SetPriority('A')
		return
	}
	if t.Priority() == 'Z' {
		return
	}
	t.SetPriority(t.Priority() + 1)
}

// SetDueDate rewrites every due: tag to text, or appends one when the task
// has no due date. Text that is not a YYYY-MM-DD date is ignored.
func (t *Task) SetDueDate(text string) {
	t.setTagDate(dueTag, t.f.dueDateText, text)
}

func (t *Task) RemoveDueDate() {
	t.SetRawText(dueTag.remove(t.raw))
}

// IncrementDueDate moves the due date by days, starting from today when the
// task has none.
func (t *Task) IncrementDueDate(days int) {
	t.SetDueDate(shiftDate(t.f.dueDateText, t.f.dueDate, days))
}

func (t *Task) DecrementDueDate(days int) {
	t.IncrementDueDate(-days)
}

// SetThresholdDate behaves like SetDueDate for the t: tag.
func (t *Task) SetThresholdDate(text string) {
	t.setTagDate(thresholdTag, t.f.thresholdDateText, text)
}

func (t *Task) RemoveThresholdDate() {
	t.SetRawText(thresholdTag.remove(t.raw))
}

func (t *Task) IncrementThresholdDate(days int) {
	t.SetThresholdDate(shiftDate(t.f.thresholdDateText, t.f.thresholdDate, days))
}

func (t *Task) DecrementThresholdDate(days int) {
	t.IncrementThresholdDate(-days)
}

func (t *Task) setTagDate(tag dateTag, current, text string) {
	if _, ok := ParseDate(text); !ok {
		return
	}
	if current != "" {
		t.SetRawText(tag.replaceAll(t.raw, text))
		return
	}
	t.AppendText(tag.key + text)
}

func shiftDate(current string, date time.Time, days int) string {
	if current == "" {
		date = Today()
	}
	return FormatDate(date.AddDate(0, 0, days))
}
