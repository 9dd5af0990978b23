package tasklist

import (
	"time"

	"todotxt/internal/task"
)

// Command is one mutation UpdateSelected can apply to a batch of tasks.
// The set of commands is closed; each carries its own argument.
type Command interface {
	command()
}

type (
	ToggleCompletion struct{}
	MarkComplete     struct{}
	MarkIncomplete   struct{}

	SetPriority      struct{ Priority rune }
	RemovePriority   struct{}
	IncreasePriority struct{}
	DecreasePriority struct{}

	SetDueDate       struct{ Date time.Time }
	RemoveDueDate    struct{}
	IncrementDueDate struct{ Days int }
	DecrementDueDate struct{ Days int }

	SetThresholdDate       struct{ Date time.Time }
	RemoveThresholdDate    struct{}
	IncrementThresholdDate struct{ Days int }
	DecrementThresholdDate struct{ Days int }

	AppendText  struct{ Text string }
	PrependText struct{ Text string }
	ReplaceText struct{ Old, New string }
	// SetText replaces the whole line, blank lines included.
	SetText struct{ Text string }
)

func (ToggleCompletion) command()       {}
func (MarkComplete) command()           {}
func (MarkIncomplete) command()         {}
func (SetPriority) command()            {}
func (RemovePriority) command()         {}
func (IncreasePriority) command()       {}
func (DecreasePriority) command()       {}
func (SetDueDate) command()             {}
func (RemoveDueDate) command()          {}
func (IncrementDueDate) command()       {}
func (DecrementDueDate) command()       {}
func (SetThresholdDate) command()       {}
func (RemoveThresholdDate) command()    {}
func (IncrementThresholdDate) command() {}
func (DecrementThresholdDate) command() {}
func (AppendText) command()             {}
func (PrependText) command()            {}
func (ReplaceText) command()            {}
func (SetText) command()                {}

// Apply runs cmd against t in place. Unknown commands do nothing.
func Apply(t *task.Task, cmd Command) {
	switch c := cmd.(type) {
	case ToggleCompletion:
		t.ToggleCompletion()
	case MarkComplete:
		t.MarkComplete()
	case MarkIncomplete:
		t.MarkIncomplete()
	case SetPriority:
		t.SetPriority(c.Priority)
	case RemovePriority:
		t.RemovePriority()
	case IncreasePriority:
		t.IncreasePriority()
	case DecreasePriority:
		t.DecreasePriority()
	case SetDueDate:
		t.SetDueDate(task.FormatDate(c.Date))
	case RemoveDueDate:
		t.RemoveDueDate()
	case IncrementDueDate:
		t.IncrementDueDate(c.Days)
	case DecrementDueDate:
		t.DecrementDueDate(c.Days)
	case SetThresholdDate:
		t.SetThresholdDate(task.FormatDate(c.Date))
	case RemoveThresholdDate:
		t.RemoveThresholdDate()
	case IncrementThresholdDate:
		t.IncrementThresholdDate(c.Days)
	case DecrementThresholdDate:
		t.DecrementThresholdDate(c.Days)
	case AppendText:
		t.AppendText(c.Text)
	case PrependText:
		t.PrependText(c.Text)
	case ReplaceText:
		t.ReplaceText(c.Old, c.New)
	case SetText:
		t.SetRawText(c.Text)
	}
}
