// Package observable provides an ordered list that re-publishes the field
// changes of its elements as collection-level notifications.
package observable

import (
	"errors"
	"slices"
)

var (
	ErrNilArgument    = errors.New("nil argument")
	ErrLengthMismatch = errors.New("batch length mismatch")
	ErrNotFound       = errors.New("item not found")
)

// Action is the kind of a structural change.
type Action int

const (
	Add Action = iota
	Remove
	Replace
	// Reset means "something in the list changed"; consumers re-read the
	// whole list.
	Reset
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	default:
		return "reset"
	}
}

// Change describes one notification. Index is the position of the first
// affected element, or -1 when the change is not positional.
type Change[T any] struct {
	Action   Action
	NewItems []T
	OldItems []T
	Index    int
}

// Element is what a List can hold: a comparable handle (usually a pointer)
// that reports its own field changes.
type Element[T any, F any] interface {
	comparable
	Subscribe(fn func(F)) (cancel func())
	Equal(other T) bool
}

type subscription struct {
	cancel func()
	count  int
}

type listener[T any] struct {
	id int
	fn func(Change[T])
}

type config[F any] struct {
	filter func(F) bool
}

type Option[F any] func(*config[F])

// WithFieldFilter limits which element field changes are re-published as a
// Reset. By default every field change is.
func WithFieldFilter[F any](keep func(F) bool) Option[F] {
	return func(c *config[F]) {
		c.filter = keep
	}
}

// List is an ordered container. It subscribes to every element it holds,
// once per distinct element, and unsubscribes when the last copy leaves.
// A List is not safe for concurrent use.
type List[T Element[T, F], F any] struct {
	items   []T
	handles map[T]*subscription
	filter  func(F) bool

	listeners    []listener[T]
	nextListener int
}

func New[T Element[T, F], F any](opts ...Option[F]) *List[T, F] {
	var c config[F]
	for _, opt := range opts {
		opt(&c)
	}
	return &List[T, F]{
		handles: make(map[T]*subscription),
		filter:  c.filter,
	}
}

func (l *List[T, F]) Len() int { return len(l.items) }

func (l *List[T, F]) At(i int) T { return l.items[i] }

// Items returns a copy of the contents in order.
func (l *List[T, F]) Items() []T { return slices.Clone(l.items) }

// IndexOf finds item by identity first, then by Equal. It returns -1 when
// nothing matches.
func (l *List[T, F]) IndexOf(item T) int {
	return indexIn[T, F](l.items, item)
}

func indexIn[T Element[T, F], F any](items []T, item T) int {
	if i := slices.Index(items, item); i >= 0 {
		return i
	}
	var zero T
	if item == zero {
		return -1
	}
	return slices.IndexFunc(items, func(x T) bool { return x != zero && x.Equal(item) })
}

// Subscribe registers fn for every change notification. The returned
// function removes the registration.
func (l *List[T, F]) Subscribe(fn func(Change[T])) (cancel func()) {
	l.nextListener++
	id := l.nextListener
	l.listeners = append(l.listeners, listener[T]{id: id, fn: fn})
	return func() {
		l.listeners = slices.DeleteFunc(l.listeners, func(s listener[T]) bool { return s.id == id })
	}
}

func (l *List[T, F]) publish(c Change[T]) {
	for _, s := range slices.Clone(l.listeners) {
		s.fn(c)
	}
}

// Append adds items at the end and publishes one Add. An empty call is a
// no-op.
func (l *List[T, F]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	start := len(l.items)
	l.items = append(l.items, items...)
	l.watch(items...)
	l.publish(Change[T]{Action: Add, NewItems: slices.Clone(items), Index: start})
}

// Remove deletes the first match of each item and publishes one Remove
// carrying the elements that were actually taken out. It reports how many
// were removed.
func (l *List[T, F]) Remove(items ...T) int {
	if len(items) == 0 {
		return 0
	}
	var removed []T
	for _, item := range items {
		i := l.IndexOf(item)
		if i < 0 {
			continue
		}
		removed = append(removed, l.items[i])
		l.items = slices.Delete(l.items, i, i+1)
	}
	l.unwatch(removed...)
	l.publish(Change[T]{Action: Remove, OldItems: removed, Index: -1})
	return len(removed)
}

// Clear empties the list and publishes one Reset.
func (l *List[T, F]) Clear() {
	l.ReplaceAll()
}

// ReplaceAll swaps the whole contents for items and publishes one Reset
// carrying both the old and the new elements.
func (l *List[T, F]) ReplaceAll(items ...T) {
	old := l.items
	l.items = slices.Clone(items)
	l.unwatch(old...)
	l.watch(items...)
	l.publish(Change[T]{Action: Reset, OldItems: old, NewItems: slices.Clone(items), Index: -1})
}

// Set replaces the element at index i and publishes one Replace.
func (l *List[T, F]) Set(i int, item T) error {
	var zero T
	if item == zero {
		return ErrNilArgument
	}
	if i < 0 || i >= len(l.items) {
		return ErrNotFound
	}
	old := l.items[i]
	l.items[i] = item
	l.unwatch(old)
	l.watch(item)
	l.publish(Change[T]{Action: Replace, OldItems: []T{old}, NewItems: []T{item}, Index: i})
	return nil
}

// ReplaceItem substitutes replacement for old in place. Exactly one Replace
// is published.
func (l *List[T, F]) ReplaceItem(old, replacement T) error {
	var zero T
	if old == zero || replacement == zero {
		return ErrNilArgument
	}
	i := l.IndexOf(old)
	if i < 0 {
		return ErrNotFound
	}
	return l.Set(i, replacement)
}

// ReplaceItems substitutes replacements[i] for olds[i], pairwise and in
// order, and publishes one Replace carrying both batches. Nothing changes
// unless every old element is found.
func (l *List[T, F]) ReplaceItems(olds, replacements []T) error {
	if olds == nil || replacements == nil {
		return ErrNilArgument
	}
	if len(olds) != len(replacements) {
		return ErrLengthMismatch
	}
	var zero T
	if slices.Contains(replacements, zero) {
		return ErrNilArgument
	}

	next := slices.Clone(l.items)
	oldItems := make([]T, 0, len(olds))
	first := -1
	for i, old := range olds {
		at := indexIn[T, F](next, old)
		if at < 0 {
			return ErrNotFound
		}
		if first < 0 || at < first {
			first = at
		}
		oldItems = append(oldItems, next[at])
		next[at] = replacements[i]
	}
	if len(olds) == 0 {
		return nil
	}

	l.items = next
	l.unwatch(oldItems...)
	l.watch(replacements...)
	l.publish(Change[T]{
		Action:   Replace,
		OldItems: oldItems,
		NewItems: slices.Clone(replacements),
		Index:    first,
	})
	return nil
}

func (l *List[T, F]) watch(items ...T) {
	for _, item := range items {
		if h, ok := l.handles[item]; ok {
			h.count++
			continue
		}
		l.handles[item] = &subscription{
			cancel: item.Subscribe(l.onElementChange),
			count:  1,
		}
	}
}

func (l *List[T, F]) unwatch(items ...T) {
	for _, item := range items {
		h, ok := l.handles[item]
		if !ok {
			continue
		}
		h.count--
		if h.count > 0 {
			continue
		}
		h.cancel()
		delete(l.handles, item)
	}
}

func (l *List[T, F]) onElementChange(field F) {
	if l.filter != nil && !l.filter(field) {
		return
	}
	l.publish(Change[T]{Action: Reset, Index: -1})
}
