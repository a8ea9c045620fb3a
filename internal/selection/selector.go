package selection

import (
	"fmt"
	"log"

	"listpick/internal/collections"
)

// Mode controls how many items may be selected at once
type Mode int

const (
	Single Mode = iota
	Multiple
)

func (m Mode) String() string {
	if m == Multiple {
		return "multiple"
	}
	return "single"
}

// SelectionChange is the coalesced delta of one transaction
type SelectionChange struct {
	Removed []any
	Added   []any
}

// Empty reports whether nothing changed
func (c SelectionChange) Empty() bool {
	return len(c.Removed) == 0 && len(c.Added) == 0
}

// Property names an observable selector property
type Property int

const (
	PropertySelectedIndex Property = iota
	PropertySelectedItem
)

func (p Property) String() string {
	if p == PropertySelectedItem {
		return "SelectedItem"
	}
	return "SelectedIndex"
}

// PropertyChange reports a new value of SelectedIndex or SelectedItem
type PropertyChange struct {
	Property Property
	Old      any
	New      any
}

// Option configures a Selector
type Option func(*Selector)

// WithMode sets the selection mode
func WithMode(mode Mode) Option {
	return func(s *Selector) {
		s.mode = mode
	}
}

// WithContainers shares a container arena with the host view
func WithContainers(c *Containers) Option {
	return func(s *Selector) {
		s.containers = c
	}
}

// WithItemTemplate tells the selector that containers are generated from a
// template and cannot be inspected after a reset.
func WithItemTemplate(uses bool) Option {
	return func(s *Selector) {
		s.usesTemplate = uses
	}
}

// WithErrorHandler receives errors raised from change notifications, which
// have no caller to return to. Defaults to logging.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Selector) {
		s.onError = fn
	}
}

type deferredKind int

const (
	deferNone deferredKind = iota
	deferIndex
	deferItem
)

type deferredWrite struct {
	kind  deferredKind
	index int
	item  any
}

// Selector keeps SelectedIndex, SelectedItem and the SelectedItems list
// consistent with a single Storage, and translates changes of the items
// source and of SelectedItems into selection transactions.
type Selector struct {
	mode         Mode
	items        *collections.List
	selected     *collections.List
	storage      *Storage
	changer      *Changer
	containers   *Containers
	usesTemplate bool

	index int
	item  any

	initializing bool
	deferred     deferredWrite
	syncing      bool

	outbox       []SelectionChange
	delivering   bool
	onSelection  []func(SelectionChange)
	onProperty   []func(PropertyChange)
	onError      func(error)

	unsubItems    func()
	unsubSelected func()
}

// New creates a selector over items
func New(items *collections.List, opts ...Option) (*Selector, error) {
	if items == nil {
		return nil, fmt.Errorf("items source: %w", ErrNilArgument)
	}

	s := &Selector{
		selected: collections.NewList(),
		storage:  NewStorage(),
		index:    -1,
		onError: func(err error) {
			log.Printf("Selector: %v", err)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.containers == nil {
		s.containers = NewContainers()
	}
	s.changer = NewChanger(selectorHost{s})

	s.selected.SetValidator(s.validateSelectedItemsChange)
	s.unsubSelected = s.selected.Subscribe(s.handleSelectedItemsChange)
	s.attach(items)
	return s, nil
}

// Close stops listening to both collections
func (s *Selector) Close() {
	if s.unsubItems != nil {
		s.unsubItems()
		s.unsubItems = nil
	}
	if s.unsubSelected != nil {
		s.unsubSelected()
		s.unsubSelected = nil
	}
}

// Mode returns the selection mode
func (s *Selector) Mode() Mode {
	return s.mode
}

// Items returns the items source
func (s *Selector) Items() *collections.List {
	return s.items
}

// Containers returns the container arena
func (s *Selector) Containers() *Containers {
	return s.containers
}

// Storage returns the selection source of truth
func (s *Selector) Storage() *Storage {
	return s.storage
}

// SelectedIndex returns the index of the primary selection, or -1
func (s *Selector) SelectedIndex() int {
	return s.index
}

// SelectedItem returns the primary selection, or nil
func (s *Selector) SelectedItem() any {
	return s.item
}

// SelectedItems returns the mutable list of selected items. Changes made to it
// are applied to the selection one item at a time.
func (s *Selector) SelectedItems() *collections.List {
	return s.selected
}

// IsSelected reports whether item is selected
func (s *Selector) IsSelected(item any) bool {
	return s.storage.Contains(item)
}

// Count returns the number of selected items
func (s *Selector) Count() int {
	return s.storage.Len()
}

// OnSelectionChanged registers a listener for coalesced selection deltas
func (s *Selector) OnSelectionChanged(fn func(SelectionChange)) {
	s.onSelection = append(s.onSelection, fn)
}

// OnPropertyChanged registers a listener for SelectedIndex and SelectedItem
func (s *Selector) OnPropertyChanged(fn func(PropertyChange)) {
	s.onProperty = append(s.onProperty, fn)
}

// SetItemsSource swaps the items source. The change is handled as a reset.
func (s *Selector) SetItemsSource(items *collections.List) error {
	if items == nil {
		return fmt.Errorf("items source: %w", ErrNilArgument)
	}
	if s.unsubItems != nil {
		s.unsubItems()
	}
	s.attach(items)
	return s.handleReset()
}

func (s *Selector) attach(items *collections.List) {
	s.items = items
	s.unsubItems = items.Subscribe(s.handleItemsChange)
}

// BeginInit defers selection writes until EndInit
func (s *Selector) BeginInit() {
	s.initializing = true
	s.deferred = deferredWrite{}
}

// EndInit applies the last deferred SelectedIndex or SelectedItem write,
// unless something got selected while initializing.
func (s *Selector) EndInit() error {
	if !s.initializing {
		return nil
	}
	s.initializing = false
	d := s.deferred
	s.deferred = deferredWrite{}

	if s.storage.Len() > 0 {
		return nil
	}
	switch d.kind {
	case deferIndex:
		return s.SetSelectedIndex(d.index)
	case deferItem:
		return s.SetSelectedItem(d.item)
	}
	return nil
}

// SetSelectedIndex makes the item at index the only selection; -1 clears it.
// An out of range index leaves the selection untouched.
func (s *Selector) SetSelectedIndex(index int) error {
	if s.changer.IsActive() {
		return nil
	}
	if s.initializing {
		s.deferred = deferredWrite{kind: deferIndex, index: index}
		return nil
	}

	// Validate before touching storage so a rejected write changes nothing
	if index < -1 || index >= s.items.Len() {
		return fmt.Errorf("index %d not in [-1, %d): %w", index, s.items.Len(), ErrIndexOutOfRange)
	}
	return s.changer.SelectJustThisIndex(index)
}

// SetSelectedItem makes item the only selection; nil clears it.
// Items missing from the source leave the selection untouched.
func (s *Selector) SetSelectedItem(item any) error {
	if s.changer.IsActive() {
		return nil
	}
	if s.initializing {
		s.deferred = deferredWrite{kind: deferItem, item: item}
		return nil
	}

	if item != nil && s.items.IndexOf(item) < 0 {
		return fmt.Errorf("%v: %w", item, ErrInvalidSelectedItem)
	}
	return s.changer.SelectJustThisItem(item)
}

// SelectRange selects the items between start and end inclusive, in one transaction
func (s *Selector) SelectRange(start, end int, clearOld bool) error {
	if start > end {
		start, end = end, start
	}
	if start < 0 || end >= s.items.Len() {
		return fmt.Errorf("range [%d, %d] of %d items: %w", start, end, s.items.Len(), ErrIndexOutOfRange)
	}

	return s.transact(func(t *Txn) {
		if clearOld {
			for _, it := range s.storage.Items() {
				t.Unselect(it)
			}
		}
		for i := start; i <= end; i++ {
			it, _ := s.items.Get(i)
			t.Select(i, it)
		}
	})
}

// SelectItems adds every given item found in the source to the selection,
// in one transaction. Items missing from the source are skipped.
func (s *Selector) SelectItems(items []any) error {
	if items == nil {
		return fmt.Errorf("items: %w", ErrNilArgument)
	}
	return s.transact(func(t *Txn) {
		for _, it := range items {
			t.Select(s.items.IndexOf(it), it)
		}
	})
}

// SelectAll selects every item
func (s *Selector) SelectAll() error {
	if s.mode != Multiple {
		return ErrMultipleSelectionOnly
	}
	if s.items.Len() == 0 {
		return nil
	}
	return s.SelectRange(0, s.items.Len()-1, false)
}

// UnselectAll clears the selection
func (s *Selector) UnselectAll() error {
	return s.transact(func(t *Txn) {
		for _, it := range s.storage.Items() {
			t.Unselect(it)
		}
	})
}

// Toggle flips the selection of the item at index. In single mode selecting
// an item replaces the previous selection.
func (s *Selector) Toggle(index int) error {
	item, ok := s.items.Get(index)
	if !ok {
		return fmt.Errorf("toggle %d of %d: %w", index, s.items.Len(), ErrIndexOutOfRange)
	}
	return s.transact(func(t *Txn) {
		if s.storage.Contains(item) {
			t.Unselect(item)
		} else {
			t.Select(index, item)
		}
	})
}

// transact runs fn inside a transaction. Calls made while a transaction is
// already open are ignored.
func (s *Selector) transact(fn func(t *Txn)) error {
	if s.changer.IsActive() {
		return nil
	}
	t, err := s.changer.Begin()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = t.Cancel()
		}
	}()
	fn(t)
	committed = true
	return t.End()
}

func (s *Selector) validateSelectedItemsChange(ev collections.ChangeEvent) error {
	if s.syncing || s.changer.IsActive() {
		return nil
	}
	switch ev.Action {
	case collections.ActionAdd, collections.ActionRemove, collections.ActionReplace:
		if len(ev.NewItems) > 1 || len(ev.OldItems) > 1 {
			return fmt.Errorf("%s of %d items: %w", ev.Action, max(len(ev.NewItems), len(ev.OldItems)), ErrRangeActionsNotSupported)
		}
	}
	switch ev.Action {
	case collections.ActionAdd, collections.ActionReplace, collections.ActionReset:
		for _, it := range ev.NewItems {
			if s.items.IndexOf(it) < 0 {
				return fmt.Errorf("%v: %w", it, ErrInvalidSelectedItem)
			}
		}
	}

	// SelectedItems holds each item once
	switch ev.Action {
	case collections.ActionAdd:
		if len(ev.NewItems) == 1 && s.selected.Contains(ev.NewItems[0]) {
			return fmt.Errorf("%v already selected: %w", ev.NewItems[0], ErrInvalidSelectedItem)
		}
	case collections.ActionReplace:
		if len(ev.NewItems) != 1 {
			break
		}
		if at := s.selected.IndexOf(ev.NewItems[0]); at >= 0 && at != ev.OldIndex {
			return fmt.Errorf("%v already selected: %w", ev.NewItems[0], ErrInvalidSelectedItem)
		}
	case collections.ActionReset:
		seen := make(map[any]struct{}, len(ev.NewItems))
		for _, it := range ev.NewItems {
			key := collections.KeyOf(it)
			if _, dup := seen[key]; dup {
				return fmt.Errorf("%v listed twice: %w", it, ErrInvalidSelectedItem)
			}
			seen[key] = struct{}{}
		}
	}
	return nil
}

func (s *Selector) handleSelectedItemsChange(ev collections.ChangeEvent) {
	if s.syncing || s.changer.IsActive() {
		return
	}

	var err error
	switch ev.Action {
	case collections.ActionAdd:
		err = s.transact(func(t *Txn) {
			for _, it := range ev.NewItems {
				t.Select(s.items.IndexOf(it), it)
			}
		})

	case collections.ActionRemove:
		err = s.transact(func(t *Txn) {
			for _, it := range ev.OldItems {
				t.Unselect(it)
			}
		})

	case collections.ActionReplace:
		err = s.transact(func(t *Txn) {
			for _, it := range ev.OldItems {
				t.Unselect(it)
			}
			for _, it := range ev.NewItems {
				t.Select(s.items.IndexOf(it), it)
			}
		})

	case collections.ActionReset:
		err = s.transact(func(t *Txn) {
			for _, it := range s.storage.Items() {
				t.Unselect(it)
			}
			for _, it := range ev.NewItems {
				t.Select(s.items.IndexOf(it), it)
			}
		})

	case collections.ActionMove:
		// Order of SelectedItems carries no meaning

	default:
		err = fmt.Errorf("selected items %s: %w", ev.Action, collections.ErrUnknownAction)
	}
	if err != nil {
		s.reportError(err)
	}
}

func (s *Selector) handleItemsChange(ev collections.ChangeEvent) {
	if s.changer.IsActive() {
		s.reportError(fmt.Errorf("items source %s during selection change: %w", ev.Action, ErrTransactionActive))
		return
	}

	var err error
	switch ev.Action {
	case collections.ActionAdd:
		s.storage.InvalidateStoredIndexes(ev.NewIndex)
		err = s.transact(func(t *Txn) {
			for i, it := range ev.NewItems {
				if s.containers.IsSelected(it) {
					t.Select(ev.NewIndex+i, it)
				}
			}
		})

	case collections.ActionRemove:
		s.storage.InvalidateStoredIndexes(ev.OldIndex)
		err = s.transact(func(t *Txn) {
			s.unselectGone(t, ev.OldItems)
		})

	case collections.ActionReplace:
		s.storage.InvalidateStoredIndexes(ev.OldIndex)
		err = s.transact(func(t *Txn) {
			s.unselectGone(t, ev.OldItems)
			for i, it := range ev.NewItems {
				if s.containers.IsSelected(it) {
					t.Select(ev.NewIndex+i, it)
				}
			}
		})

	case collections.ActionReset:
		err = s.handleReset()

	case collections.ActionMove:
		// Selection is unchanged but the primary index may have moved
		s.storage.InvalidateStoredIndexes(min(ev.OldIndex, ev.NewIndex))
		err = s.transact(func(*Txn) {})

	default:
		err = fmt.Errorf("items source %s: %w", ev.Action, collections.ErrUnknownAction)
	}
	if err != nil {
		s.reportError(err)
	}
}

func (s *Selector) handleReset() error {
	s.storage.InvalidateStoredIndexes(0)
	return s.transact(func(t *Txn) {
		for _, it := range s.storage.Items() {
			t.Unselect(it)
		}
		if s.usesTemplate {
			return
		}
		for i, it := range s.items.Items() {
			if s.containers.IsSelected(it) {
				t.Select(i, it)
			}
		}
	})
}

// unselectGone unselects removed items that no longer occur in the source.
// A value item can still be present through an equal duplicate.
func (s *Selector) unselectGone(t *Txn, removed []any) {
	for _, it := range removed {
		if s.storage.Contains(it) && s.items.IndexOf(it) < 0 {
			t.Unselect(it)
		}
	}
}

// syncSelectedItems brings SelectedItems in line with storage without
// reordering the items it already holds.
func (s *Selector) syncSelectedItems() {
	s.syncing = true
	defer func() { s.syncing = false }()

	for i := s.selected.Len() - 1; i >= 0; i-- {
		it, _ := s.selected.Get(i)
		if !s.storage.Contains(it) || s.selected.IndexOf(it) < i {
			_ = s.selected.RemoveAt(i)
		}
	}
	for _, it := range s.storage.Items() {
		if !s.selected.Contains(it) {
			_ = s.selected.Append(it)
		}
	}
}

// updatePrimary runs while the transaction is still open, so property
// listeners writing back into the selection are ignored.
func (s *Selector) updatePrimary(index int, item any) {
	s.syncSelectedItems()

	var props []PropertyChange
	if index != s.index {
		props = append(props, PropertyChange{Property: PropertySelectedIndex, Old: s.index, New: index})
		s.index = index
	}
	if !collections.Equal(item, s.item) {
		props = append(props, PropertyChange{Property: PropertySelectedItem, Old: s.item, New: item})
		s.item = item
	}
	for _, p := range props {
		for _, fn := range s.onProperty {
			fn(p)
		}
	}
}

// committed delivers the delta of a closed transaction. Deltas of transactions
// started by selection listeners are queued until every listener has seen
// the current one.
func (s *Selector) committed(removed, added []any) {
	change := SelectionChange{Removed: removed, Added: added}
	if change.Empty() {
		return
	}
	log.Printf("Selector: %d removed, %d added, %d selected", len(removed), len(added), s.storage.Len())

	s.outbox = append(s.outbox, change)
	if s.delivering {
		return
	}
	s.delivering = true
	defer func() {
		s.delivering = false
		s.outbox = nil
	}()
	for len(s.outbox) > 0 {
		next := s.outbox[0]
		s.outbox = s.outbox[1:]
		for _, fn := range s.onSelection {
			fn(next)
		}
	}
}

func (s *Selector) reportError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// selectorHost exposes the selector to its changer without widening the public API
type selectorHost struct {
	s *Selector
}

func (h selectorHost) CanSelectMultiple() bool { return h.s.mode == Multiple }
func (h selectorHost) Storage() *Storage       { return h.s.storage }
func (h selectorHost) IndexOf(item any) int    { return h.s.items.IndexOf(item) }

func (h selectorHost) ItemAt(index int) (any, bool) {
	return h.s.items.Get(index)
}

func (h selectorHost) SetContainerSelected(item any, selected bool) {
	h.s.containers.SetSelected(item, selected)
}

func (h selectorHost) UpdatePrimary(index int, item any) {
	h.s.updatePrimary(index, item)
}

func (h selectorHost) Committed(removed, added []any) {
	h.s.committed(removed, added)
}
