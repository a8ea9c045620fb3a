package selection

import "listpick/internal/collections"

// Storage is the ordered set of selected items. Each entry caches the last
// known position of its item in the items source, or -1 when unknown.
type Storage struct {
	order []any
	index map[any]int // identity key -> cached source index
}

// NewStorage creates an empty storage
func NewStorage() *Storage {
	return &Storage{index: make(map[any]int)}
}

// Add appends item with a cached index. Adding a stored item is a no-op;
// callers are expected to check Contains first.
func (s *Storage) Add(item any, index int) {
	key := collections.KeyOf(item)
	if _, ok := s.index[key]; ok {
		return
	}
	if index < 0 {
		index = -1
	}
	s.order = append(s.order, item)
	s.index[key] = index
}

// Remove deletes item and reports whether it was stored
func (s *Storage) Remove(item any) bool {
	key := collections.KeyOf(item)
	if _, ok := s.index[key]; !ok {
		return false
	}
	delete(s.index, key)
	for i, it := range s.order {
		if collections.KeyOf(it) == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether item is stored
func (s *Storage) Contains(item any) bool {
	_, ok := s.index[collections.KeyOf(item)]
	return ok
}

// StoredIndexOf returns the cached source index of item, or -1
func (s *Storage) StoredIndexOf(item any) int {
	if i, ok := s.index[collections.KeyOf(item)]; ok {
		return i
	}
	return -1
}

// SetStoredIndex updates the cached index of a stored item
func (s *Storage) SetStoredIndex(item any, index int) {
	key := collections.KeyOf(item)
	if _, ok := s.index[key]; ok {
		if index < 0 {
			index = -1
		}
		s.index[key] = index
	}
}

// InvalidateStoredIndexes forgets every cached index at or after from
func (s *Storage) InvalidateStoredIndexes(from int) {
	for key, i := range s.index {
		if i >= from {
			s.index[key] = -1
		}
	}
}

// Len returns the number of stored items
func (s *Storage) Len() int {
	return len(s.order)
}

// First returns the earliest stored item
func (s *Storage) First() (any, bool) {
	if len(s.order) == 0 {
		return nil, false
	}
	return s.order[0], true
}

// Items returns the stored items in insertion order
func (s *Storage) Items() []any {
	out := make([]any, len(s.order))
	copy(out, s.order)
	return out
}

// Clear removes everything
func (s *Storage) Clear() {
	s.order = nil
	s.index = make(map[any]int)
}

// entry pairs an item with its cached index, used to snapshot storage
type entry struct {
	item  any
	index int
}

func (s *Storage) snapshot() []entry {
	out := make([]entry, len(s.order))
	for i, it := range s.order {
		out[i] = entry{item: it, index: s.index[collections.KeyOf(it)]}
	}
	return out
}
