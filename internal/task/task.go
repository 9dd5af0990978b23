package task

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Field names a task attribute in change notifications.
type Field string

const (
	FieldRawText            Field = "RawText"
	FieldID                 Field = "ID"
	FieldIsBlank            Field = "IsBlank"
	FieldIsCompleted        Field = "IsCompleted"
	FieldIsPrioritized      Field = "IsPrioritized"
	FieldPriorityText       Field = "PriorityText"
	FieldPriority           Field = "Priority"
	FieldProjects           Field = "Projects"
	FieldHasProjects        Field = "HasProjects"
	FieldContexts           Field = "Contexts"
	FieldHasContexts        Field = "HasContexts"
	FieldCreationDateText   Field = "CreationDateText"
	FieldCreationDate       Field = "CreationDate"
	FieldCompletionDateText Field = "CompletionDateText"
	FieldCompletionDate     Field = "CompletionDate"
	FieldDueDateText        Field = "DueDateText"
	FieldDueDate            Field = "DueDate"
	FieldDueState           Field = "DueState"
	FieldThresholdDateText  Field = "ThresholdDateText"
	FieldThresholdDate      Field = "ThresholdDate"
	FieldThresholdState     Field = "ThresholdState"
)

type DueState int

const (
	Overdue DueState = iota
	DueToday
	NotDue
)

func (s DueState) String() string {
	switch s {
	case Overdue:
		return "overdue"
	case DueToday:
		return "due today"
	default:
		return "not due"
	}
}

type ThresholdState int

const (
	BeforeThresholdDate ThresholdState = iota
	OnThresholdDate
	AfterThresholdDate
)

func (s ThresholdState) String() string {
	switch s {
	case BeforeThresholdDate:
		return "before threshold"
	case OnThresholdDate:
		return "on threshold"
	default:
		return "after threshold"
	}
}

// Task is one line of a todo.txt file plus everything derived from it.
// The raw text is the only mutable state; every derived attribute is
// recomputed from scratch whenever it changes.
type Task struct {
	raw   string
	id    int
	hasID bool
	f     fields

	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Field)
}

type options struct {
	id           int
	hasID        bool
	creationDate string
}

type Option func(*options)

// WithID assigns the task's external identifier at construction.
func WithID(id int) Option {
	return func(o *options) {
		o.id = id
		o.hasID = true
	}
}

// WithCreationDate inserts date as the creation date when the line does not
// already carry one. It only applies at construction.
func WithCreationDate(date string) Option {
	return func(o *options) {
		o.creationDate = date
	}
}

func New(raw string, opts ...Option) *Task {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	t := &Task{id: o.id, hasID: o.hasID}
	t.raw = prependCreationDate(stripLineBreaks(raw), o.creationDate)
	t.f = derive(t.raw, Today())
	return t
}

// Clone returns a value copy with the same raw text and id and no
// subscribers.
func (t *Task) Clone() *Task {
	return &Task{
		raw:   t.raw,
		id:    t.id,
		hasID: t.hasID,
		f:     t.f.clone(),
	}
}

// Subscribe registers fn for field-change notifications. The returned
// function removes the registration.
func (t *Task) Subscribe(fn func(Field)) (cancel func()) {
	t.nextSub++
	id := t.nextSub
	t.subs = append(t.subs, subscriber{id: id, fn: fn})
	return func() {
		t.subs = slices.DeleteFunc(t.subs, func(s subscriber) bool { return s.id == id })
	}
}

func (t *Task) notify(changed []Field) {
	if len(changed) == 0 || len(t.subs) == 0 {
		return
	}
	subs := slices.Clone(t.subs)
	for _, name := range changed {
		for _, s := range subs {
			s.fn(name)
		}
	}
}

// SetRawText replaces the whole line and re-derives every attribute. Line
// breaks are stripped. Subscribers hear about each attribute whose value
// changed, after the record is fully consistent again.
func (t *Task) SetRawText(raw string) {
	raw = stripLineBreaks(raw)
	next := derive(raw, Today())

	var changed []Field
	if raw != t.raw {
		changed = append(changed, FieldRawText)
	}
	changed = append(changed, t.f.changed(next)...)

	t.raw = raw
	t.f = next
	t.notify(changed)
}

func (t *Task) SetID(id int) {
	if t.hasID && t.id == id {
		return
	}
	t.id = id
	t.hasID = true
	t.notify([]Field{FieldID})
}

func (t *Task) RawText() string { return t.raw }

// ID returns the identifier assigned by a task list, if any.
func (t *Task) ID() (int, bool) { return t.id, t.hasID }

func (t *Task) IsBlank() bool        { return t.f.isBlank }
func (t *Task) IsCompleted() bool    { return t.f.isCompleted }
func (t *Task) IsPrioritized() bool  { return t.f.isPrioritized }
func (t *Task) PriorityText() string { return t.f.priorityText }
func (t *Task) Priority() rune       { return t.f.priority }

func (t *Task) Projects() []string { return slices.Clone(t.f.projects) }
func (t *Task) HasProjects() bool  { return len(t.f.projects) > 0 }
func (t *Task) Contexts() []string { return slices.Clone(t.f.contexts) }
func (t *Task) HasContexts() bool  { return len(t.f.contexts) > 0 }

func (t *Task) CreationDateText() string   { return t.f.creationDateText }
func (t *Task) CreationDate() time.Time    { return t.f.creationDate }
func (t *Task) CompletionDateText() string { return t.f.completionDateText }
func (t *Task) CompletionDate() time.Time  { return t.f.completionDate }

func (t *Task) DueDateText() string { return t.f.dueDateText }
func (t *Task) DueDate() time.Time  { return t.f.dueDate }
func (t *Task) DueState() DueState  { return t.f.dueState }

func (t *Task) ThresholdDateText() string      { return t.f.thresholdDateText }
func (t *Task) ThresholdDate() time.Time       { return t.f.thresholdDate }
func (t *Task) ThresholdState() ThresholdState { return t.f.thresholdState }

// String renders the task as "[id] raw text"; the id is empty when none has
// been assigned.
func (t *Task) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if t.hasID {
		b.WriteString(strconv.Itoa(t.id))
	}
	b.WriteString("] ")
	b.WriteString(t.raw)
	return b.String()
}

// Equal reports whether both tasks render identically.
func (t *Task) Equal(other *Task) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.String() == other.String()
}

// Compare orders tasks case-insensitively by raw text, then by id. A task
// without an id sorts as id 0.
func Compare(a, b *Task) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c := strings.Compare(strings.ToLower(a.raw), strings.ToLower(b.raw)); c != 0 {
		return c
	}
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	}
	return 0
}
