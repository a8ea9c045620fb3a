package collections

import (
	"errors"
	"fmt"
)

// Errors returned by list mutations
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownAction   = errors.New("unknown collection change action")
)

// Action identifies the kind of structural change a list reports
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
	ActionReplace
	ActionReset
	ActionMove
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "Add"
	case ActionRemove:
		return "Remove"
	case ActionReplace:
		return "Replace"
	case ActionReset:
		return "Reset"
	case ActionMove:
		return "Move"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ChangeEvent describes one structural change.
// Indexes are -1 when they do not apply to the action.
type ChangeEvent struct {
	Action   Action
	NewItems []any
	OldItems []any
	NewIndex int
	OldIndex int
}

// Handler receives change notifications
type Handler func(ChangeEvent)

// Validator may veto a change before it is applied
type Validator func(ChangeEvent) error

type subscription struct {
	id int
	fn Handler
}

// List is an ordered collection of items that reports every structural change
// to its subscribers. It is not safe for concurrent use.
type List struct {
	items     []any
	subs      []subscription
	nextID    int
	validator Validator
}

// NewList creates a list holding a copy of items
func NewList(items ...any) *List {
	l := &List{}
	l.items = append(l.items, items...)
	return l
}

// SetValidator installs a hook that can reject changes. Nil removes it.
func (l *List) SetValidator(v Validator) {
	l.validator = v
}

// Subscribe registers a handler and returns a function that removes it
func (l *List) Subscribe(h Handler) func() {
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscription{id: id, fn: h})

	return func() {
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of items
func (l *List) Len() int {
	return len(l.items)
}

// Get returns the item at index
func (l *List) Get(index int) (any, bool) {
	if index < 0 || index >= len(l.items) {
		return nil, false
	}
	return l.items[index], true
}

// Items returns a copy of the items in order
func (l *List) Items() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// IndexOf returns the position of item or -1
func (l *List) IndexOf(item any) int {
	key := KeyOf(item)
	for i, it := range l.items {
		if KeyOf(it) == key {
			return i
		}
	}
	return -1
}

// Contains reports whether item is in the list
func (l *List) Contains(item any) bool {
	return l.IndexOf(item) >= 0
}

// Append adds item at the end
func (l *List) Append(item any) error {
	return l.InsertRange(len(l.items), item)
}

// Insert adds item at index
func (l *List) Insert(index int, item any) error {
	return l.InsertRange(index, item)
}

// InsertRange adds items at index and reports them in a single Add event
func (l *List) InsertRange(index int, items ...any) error {
	if index < 0 || index > len(l.items) {
		return fmt.Errorf("insert at %d of %d: %w", index, len(l.items), ErrIndexOutOfRange)
	}
	if len(items) == 0 {
		return nil
	}

	ev := ChangeEvent{
		Action:   ActionAdd,
		NewItems: append([]any(nil), items...),
		NewIndex: index,
		OldIndex: -1,
	}
	if err := l.validate(ev); err != nil {
		return err
	}

	tail := append([]any(nil), l.items[index:]...)
	l.items = append(append(l.items[:index], items...), tail...)
	l.notify(ev)
	return nil
}

// RemoveAt removes the item at index
func (l *List) RemoveAt(index int) error {
	return l.RemoveRange(index, 1)
}

// Remove removes item and reports whether it was present
func (l *List) Remove(item any) (bool, error) {
	i := l.IndexOf(item)
	if i < 0 {
		return false, nil
	}
	if err := l.RemoveAt(i); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveRange removes count items starting at index in a single Remove event
func (l *List) RemoveRange(index, count int) error {
	if count <= 0 {
		return nil
	}
	if index < 0 || index+count > len(l.items) {
		return fmt.Errorf("remove %d at %d of %d: %w", count, index, len(l.items), ErrIndexOutOfRange)
	}

	ev := ChangeEvent{
		Action:   ActionRemove,
		OldItems: append([]any(nil), l.items[index:index+count]...),
		NewIndex: -1,
		OldIndex: index,
	}
	if err := l.validate(ev); err != nil {
		return err
	}

	l.items = append(l.items[:index], l.items[index+count:]...)
	l.notify(ev)
	return nil
}

// Set replaces the item at index
func (l *List) Set(index int, item any) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("replace at %d of %d: %w", index, len(l.items), ErrIndexOutOfRange)
	}

	ev := ChangeEvent{
		Action:   ActionReplace,
		NewItems: []any{item},
		OldItems: []any{l.items[index]},
		NewIndex: index,
		OldIndex: index,
	}
	if err := l.validate(ev); err != nil {
		return err
	}

	l.items[index] = item
	l.notify(ev)
	return nil
}

// Move relocates the item at oldIndex to newIndex
func (l *List) Move(oldIndex, newIndex int) error {
	n := len(l.items)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return fmt.Errorf("move %d to %d of %d: %w", oldIndex, newIndex, n, ErrIndexOutOfRange)
	}
	if oldIndex == newIndex {
		return nil
	}

	item := l.items[oldIndex]
	ev := ChangeEvent{
		Action:   ActionMove,
		NewItems: []any{item},
		OldItems: []any{item},
		NewIndex: newIndex,
		OldIndex: oldIndex,
	}
	if err := l.validate(ev); err != nil {
		return err
	}

	l.items = append(l.items[:oldIndex], l.items[oldIndex+1:]...)
	tail := append([]any(nil), l.items[newIndex:]...)
	l.items = append(append(l.items[:newIndex], item), tail...)
	l.notify(ev)
	return nil
}

// Reset replaces the whole content and reports a single Reset event
func (l *List) Reset(items ...any) error {
	ev := ChangeEvent{
		Action:   ActionReset,
		NewItems: append([]any(nil), items...),
		OldItems: l.Items(),
		NewIndex: -1,
		OldIndex: -1,
	}
	if err := l.validate(ev); err != nil {
		return err
	}

	l.items = append([]any(nil), items...)
	l.notify(ev)
	return nil
}

// Clear removes every item
func (l *List) Clear() error {
	return l.Reset()
}

func (l *List) validate(ev ChangeEvent) error {
	if l.validator == nil {
		return nil
	}
	return l.validator(ev)
}

func (l *List) notify(ev ChangeEvent) {
	// Handlers may unsubscribe while being called
	subs := append([]subscription(nil), l.subs...)
	for _, s := range subs {
		s.fn(ev)
	}
}
