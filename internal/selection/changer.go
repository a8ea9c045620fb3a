package selection

import (
	"listpick/internal/collections"
)

// Host is the control whose selection a Changer mutates
type Host interface {
	// CanSelectMultiple reports whether more than one item may be selected
	CanSelectMultiple() bool
	// Storage returns the selection source of truth
	Storage() *Storage
	// IndexOf looks an item up in the live items source, -1 when absent
	IndexOf(item any) int
	// ItemAt returns the source item at index
	ItemAt(index int) (any, bool)
	// SetContainerSelected updates the realized container of item, if any
	SetContainerSelected(item any, selected bool)
	// UpdatePrimary receives the derived primary index and item while the
	// transaction is still active, so writes it triggers do not re-enter.
	UpdatePrimary(index int, item any)
	// Committed is called once the transaction has been closed
	Committed(removed, added []any)
}

// pending is an insertion-ordered set of items with their caller-supplied index
type pending struct {
	entries []entry
	keys    map[any]struct{}
}

func newPending() *pending {
	return &pending{keys: make(map[any]struct{})}
}

func (p *pending) has(item any) bool {
	_, ok := p.keys[collections.KeyOf(item)]
	return ok
}

func (p *pending) add(item any, index int) {
	key := collections.KeyOf(item)
	if _, ok := p.keys[key]; ok {
		return
	}
	p.keys[key] = struct{}{}
	p.entries = append(p.entries, entry{item: item, index: index})
}

func (p *pending) remove(item any) bool {
	key := collections.KeyOf(item)
	if _, ok := p.keys[key]; !ok {
		return false
	}
	delete(p.keys, key)
	for i, e := range p.entries {
		if collections.KeyOf(e.item) == key {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			break
		}
	}
	return true
}

func (p *pending) len() int {
	return len(p.entries)
}

func (p *pending) reset() {
	p.entries = nil
	p.keys = make(map[any]struct{})
}

// Changer runs batched selection transactions against a Host.
// Only one transaction may be open at a time.
type Changer struct {
	host   Host
	active *Txn
}

// NewChanger creates a changer for host
func NewChanger(host Host) *Changer {
	return &Changer{host: host}
}

// IsActive reports whether a transaction is open
func (c *Changer) IsActive() bool {
	return c.active != nil
}

// Begin opens a transaction. Every successful Begin must be followed by End or Cancel.
func (c *Changer) Begin() (*Txn, error) {
	if c.active != nil {
		return nil, ErrTransactionActive
	}
	t := &Txn{
		changer:    c,
		toSelect:   newPending(),
		toUnselect: newPending(),
	}
	c.active = t
	return t, nil
}

// SelectJustThisItem makes item the only selection. A nil item clears the selection.
func (c *Changer) SelectJustThisItem(item any) error {
	index := -1
	if item != nil {
		index = c.host.IndexOf(item)
	}
	return c.selectJust(index, item)
}

// SelectJustThisIndex makes the item at index the only selection. A negative index clears it.
func (c *Changer) SelectJustThisIndex(index int) error {
	var item any
	if index >= 0 {
		it, ok := c.host.ItemAt(index)
		if !ok {
			index = -1
		}
		item = it
	}
	return c.selectJust(index, item)
}

func (c *Changer) selectJust(index int, item any) error {
	t, err := c.Begin()
	if err != nil {
		return err
	}
	for _, it := range c.host.Storage().Items() {
		t.Unselect(it)
	}
	if index >= 0 {
		t.Select(index, item)
	}
	return t.End()
}

// Txn is an open selection transaction. Its methods only touch pending state
// until End applies them.
type Txn struct {
	changer    *Changer
	toSelect   *pending
	toUnselect *pending
	done       bool
}

// Active reports whether the transaction is still open
func (t *Txn) Active() bool {
	return !t.done
}

// Select queues item, found at index in the source, for selection.
// It returns false when the request is rejected or already satisfied.
func (t *Txn) Select(index int, item any) bool {
	if t.done || index < 0 {
		return false
	}

	storage := t.changer.host.Storage()
	// An evicted pending select is not stored; selecting it again queues it anew
	if t.toUnselect.remove(item) && storage.Contains(item) {
		return true
	}

	if storage.Contains(item) || t.toSelect.has(item) {
		return false
	}

	if !t.changer.host.CanSelectMultiple() && t.toSelect.len() > 0 {
		for _, e := range t.toSelect.entries {
			t.toUnselect.add(e.item, e.index)
		}
		t.toSelect.reset()
	}

	t.toSelect.add(item, index)
	return true
}

// Unselect queues item for removal from the selection
func (t *Txn) Unselect(item any) bool {
	if t.done {
		return false
	}

	if t.toSelect.remove(item) {
		return true
	}

	storage := t.changer.host.Storage()
	if storage.Contains(item) && !t.toUnselect.has(item) {
		t.toUnselect.add(item, storage.StoredIndexOf(item))
		return true
	}
	return false
}

// Cancel discards the pending changes
func (t *Txn) Cancel() error {
	if t.done {
		return ErrTransactionDone
	}
	t.cleanup()
	return nil
}

// End applies the pending changes and reports them to the host
func (t *Txn) End() error {
	if t.done {
		return ErrTransactionDone
	}

	host := t.changer.host
	storage := host.Storage()

	t.applyCanSelectMultiple(storage)
	removed, added := t.createDelta(storage)

	index := -1
	var item any
	if first, ok := storage.First(); ok {
		item = first
		index = storage.StoredIndexOf(first)
		if index < 0 {
			index = host.IndexOf(first)
			storage.SetStoredIndex(first, index)
		}
	}
	host.UpdatePrimary(index, item)

	t.cleanup()
	host.Committed(removed, added)
	return nil
}

// applyCanSelectMultiple enforces single selection: a pending select replaces
// everything, otherwise leftover extra selections are trimmed to the first.
func (t *Txn) applyCanSelectMultiple(storage *Storage) {
	if t.changer.host.CanSelectMultiple() {
		return
	}

	if t.toSelect.len() == 1 {
		t.toUnselect.reset()
		for _, e := range storage.snapshot() {
			t.toUnselect.add(e.item, e.index)
		}
		return
	}

	if storage.Len() > 1 && storage.Len() != t.toUnselect.len()+1 {
		first, _ := storage.First()
		t.toUnselect.reset()
		for _, e := range storage.snapshot() {
			if !collections.Equal(e.item, first) {
				t.toUnselect.add(e.item, e.index)
			}
		}
	}
}

func (t *Txn) createDelta(storage *Storage) (removed, added []any) {
	host := t.changer.host
	before := storage.snapshot()
	storage.Clear()

	gone := make(map[any]struct{}, t.toUnselect.len())
	present := make(map[any]struct{}, len(before))
	for _, e := range before {
		present[collections.KeyOf(e.item)] = struct{}{}
	}

	for _, e := range t.toUnselect.entries {
		host.SetContainerSelected(e.item, false)
		key := collections.KeyOf(e.item)
		if _, ok := present[key]; ok {
			if _, dup := gone[key]; !dup {
				gone[key] = struct{}{}
				removed = append(removed, e.item)
			}
		}
	}

	for _, e := range before {
		if _, ok := gone[collections.KeyOf(e.item)]; !ok {
			storage.Add(e.item, e.index)
		}
	}

	for _, e := range t.toSelect.entries {
		host.SetContainerSelected(e.item, true)
		if !storage.Contains(e.item) {
			storage.Add(e.item, e.index)
			added = append(added, e.item)
		}
	}
	return removed, added
}

func (t *Txn) cleanup() {
	t.toSelect.reset()
	t.toUnselect.reset()
	t.done = true
	if t.changer.active == t {
		t.changer.active = nil
	}
}
