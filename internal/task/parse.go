package task

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// DateLayout is the only date format the task grammar accepts.
const DateLayout = "2006-01-02"

// NoPriority is reported by Priority for tasks without a "(X) " prefix.
const NoPriority = '~'

// HighDate stands in for every date that is absent or fails to parse. It
// sorts after any real date, so an absent due date never counts as due.
var HighDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

const (
	completedPrefixLen         = len("x 2006-01-02 ")
	completedCreationPrefixLen = len("x 2006-01-02 2006-01-02 ")
	priorityPrefixLen          = len("(A) ")
	priorityCreationPrefixLen  = len("(A) 2006-01-02 ")
	creationPrefixLen          = len("2006-01-02 ")
)

var (
	lineBreakPattern          = regexp.MustCompile(`[\r\n]`)
	completedPattern          = regexp.MustCompile(`^x (\d{4}-\d{2}-\d{2}) `)
	priorityPattern           = regexp.MustCompile(`^\(([A-Z])\) `)
	creationIncompletePattern = regexp.MustCompile(`^(?:\([A-Z]\) )?(\d{4}-\d{2}-\d{2}) `)
	creationCompletedPattern  = regexp.MustCompile(`^x \d{4}-\d{2}-\d{2} (\d{4}-\d{2}-\d{2}) `)
	projectPattern            = regexp.MustCompile(`(?:^| )(\+[^ ]+)`)
	contextPattern            = regexp.MustCompile(`(?:^| )(@[^ ]+)`)
	datePattern               = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	dueTag       = newDateTag("due:")
	thresholdTag = newDateTag("t:")
)

// now is swapped out by tests that need a fixed "today".
var now = time.Now

// Today returns the current local calendar date at UTC midnight, the form
// every parsed date uses.
func Today() time.Time {
	n := now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(text string) (time.Time, bool) {
	if !datePattern.MatchString(text) {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, text)
	if err != nil || d.Year() < 1 {
		return time.Time{}, false
	}
	return d, true
}

// FormatDate renders a date in the task grammar's format.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// fields is the full set of attributes derived from a raw line.
type fields struct {
	isBlank       bool
	isCompleted   bool
	isPrioritized bool
	priorityText  string
	priority      rune
	projects      []string
	contexts      []string

	creationDateText   string
	creationDate       time.Time
	completionDateText string
	completionDate     time.Time
	dueDateText        string
	dueDate            time.Time
	dueState           DueState
	thresholdDateText  string
	thresholdDate      time.Time
	thresholdState     ThresholdState
}

func derive(raw string, today time.Time) fields {
	var f fields
	f.isBlank = raw == ""

	completion := completedPattern.FindStringSubmatch(raw)
	f.isCompleted = completion != nil

	if m := priorityPattern.FindStringSubmatch(raw); m != nil {
		f.isPrioritized = true
		f.priorityText = strings.TrimSuffix(m[0], " ")
		f.priority = rune(m[1][0])
	} else {
		f.priority = NoPriority
	}

	f.projects = submatches(projectPattern, raw)
	f.contexts = submatches(contextPattern, raw)

	creationPattern := creationIncompletePattern
	if f.isCompleted {
		creationPattern = creationCompletedPattern
	}
	var creationText string
	if m := creationPattern.FindStringSubmatch(raw); m != nil {
		creationText = m[1]
	}
	f.creationDateText, f.creationDate = resolveDate(creationText)

	var completionText string
	if completion != nil {
		completionText = completion[1]
	}
	f.completionDateText, f.completionDate = resolveDate(completionText)

	f.dueDateText, f.dueDate = resolveDate(dueTag.first(raw))
	f.dueState = dueStateFor(f.dueDateText, f.dueDate, today)

	f.thresholdDateText, f.thresholdDate = resolveDate(thresholdTag.first(raw))
	f.thresholdState = thresholdStateFor(f.thresholdDateText, f.thresholdDate, today)

	return f
}

// changed lists the attributes that differ between two derivations, in
// declaration order.
func (f fields) changed(next fields) []Field {
	var out []Field
	add := func(differs bool, name Field) {
		if differs {
			out = append(out, name)
		}
	}
	add(f.isBlank != next.isBlank, FieldIsBlank)
	add(f.isCompleted != next.isCompleted, FieldIsCompleted)
	add(f.isPrioritized != next.isPrioritized, FieldIsPrioritized)
	add(f.priorityText != next.priorityText, FieldPriorityText)
	add(f.priority != next.priority, FieldPriority)
	add(!slices.Equal(f.projects, next.projects), FieldProjects)
	add((len(f.projects) > 0) != (len(next.projects) > 0), FieldHasProjects)
	add(!slices.Equal(f.contexts, next.contexts), FieldContexts)
	add((len(f.contexts) > 0) != (len(next.contexts) > 0), FieldHasContexts)
	add(f.creationDateText != next.creationDateText, FieldCreationDateText)
	add(!f.creationDate.Equal(next.creationDate), FieldCreationDate)
	add(f.completionDateText != next.completionDateText, FieldCompletionDateText)
	add(!f.completionDate.Equal(next.completionDate), FieldCompletionDate)
	add(f.dueDateText != next.dueDateText, FieldDueDateText)
	add(!f.dueDate.Equal(next.dueDate), FieldDueDate)
	add(f.dueState != next.dueState, FieldDueState)
	add(f.thresholdDateText != next.thresholdDateText, FieldThresholdDateText)
	add(!f.thresholdDate.Equal(next.thresholdDate), FieldThresholdDate)
	add(f.thresholdState != next.thresholdState, FieldThresholdState)
	return out
}

func (f fields) clone() fields {
	f.projects = slices.Clone(f.projects)
	f.contexts = slices.Clone(f.contexts)
	return f
}

// resolveDate applies the sentinel rule: unparseable text yields HighDate and
// an empty text field.
func resolveDate(text string) (string, time.Time) {
	d, ok := ParseDate(text)
	if !ok {
		return "", HighDate
	}
	return text, d
}

func dueStateFor(text string, due, today time.Time) DueState {
	switch {
	case text == "" || due.After(today):
		return NotDue
	case due.Equal(today):
		return DueToday
	default:
		return Overdue
	}
}

func thresholdStateFor(text string, threshold, today time.Time) ThresholdState {
	switch {
	case text == "":
		return AfterThresholdDate
	case threshold.After(today):
		return BeforeThresholdDate
	case threshold.Equal(today):
		return OnThresholdDate
	default:
		return AfterThresholdDate
	}
}

func submatches(re *regexp.Regexp, s string) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func stripLineBreaks(s string) string {
	return lineBreakPattern.ReplaceAllString(s, "")
}

// prependCreationDate inserts date after the priority marker, or at the
// start, unless the line already carries a creation date.
func prependCreationDate(raw, date string) string {
	if date == "" || creationIncompletePattern.MatchString(raw) || creationCompletedPattern.MatchString(raw) {
		return raw
	}
	if priorityPattern.MatchString(raw) {
		return raw[:priorityPrefixLen] + date + " " + raw[priorityPrefixLen:]
	}
	return date + " " + raw
}

// dateTag recognizes "key:YYYY-MM-DD" tokens bounded by spaces or line edges.
type dateTag struct {
	key     string
	pattern *regexp.Regexp
}

func newDateTag(key string) dateTag {
	return dateTag{
		key:     key,
		pattern: regexp.MustCompile(`(?:^| )` + regexp.QuoteMeta(key) + `(\d{4}-\d{2}-\d{2})`),
	}
}

// matches returns submatch indexes of every occurrence followed by a space or
// the end of the line. Index 0/1 span the token including its leading space,
// 2/3 span the date.
func (d dateTag) matches(s string) [][]int {
	var out [][]int
	for _, m := range d.pattern.FindAllStringSubmatchIndex(s, -1) {
		if end := m[1]; end == len(s) || s[end] == ' ' {
			out = append(out, m)
		}
	}
	return out
}

func (d dateTag) first(s string) string {
	ms := d.matches(s)
	if len(ms) == 0 {
		return ""
	}
	return s[ms[0][2]:ms[0][3]]
}

func (d dateTag) replaceAll(s, date string) string {
	var b strings.Builder
	last := 0
	for _, m := range d.matches(s) {
		b.WriteString(s[last:m[2]])
		b.WriteString(date)
		last = m[3]
	}
	b.WriteString(s[last:])
	return b.String()
}

// remove drops a leading occurrence together with its trailing space, then
// every occurrence preceded by a space.
func (d dateTag) remove(s string) string {
	if ms := d.matches(s); len(ms) > 0 && ms[0][0] == 0 && strings.HasPrefix(s, d.key) {
		end := ms[0][1]
		if end < len(s) {
			end++
		}
		s = s[end:]
	}

	var b strings.Builder
	last := 0
	for _, m := range d.matches(s) {
		if s[m[0]] != ' ' {
			continue
		}
		b.WriteString(s[last:m[0]])
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
