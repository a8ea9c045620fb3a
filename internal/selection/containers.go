package selection

import "listpick/internal/collections"

// Handle refers to a realized container slot. A handle outlives its slot
// safely: once the slot is unrealized or reused, the generation no longer
// matches and the handle is ignored.
type Handle struct {
	slot int
	gen  uint32
}

// Valid reports whether the handle was ever issued
func (h Handle) Valid() bool {
	return h.gen != 0
}

type containerSlot struct {
	item     any
	gen      uint32
	live     bool
	selected bool
}

// Containers is a generational arena of realized item containers.
// Hosts realize a container when they start displaying an item and
// unrealize it when the item scrolls away or is removed.
type Containers struct {
	slots  []containerSlot
	free   []int
	byItem map[any]int
}

// NewContainers creates an empty arena
func NewContainers() *Containers {
	return &Containers{byItem: make(map[any]int)}
}

// Realize returns the container for item, creating one if needed
func (c *Containers) Realize(item any) Handle {
	key := collections.KeyOf(item)
	if i, ok := c.byItem[key]; ok {
		return Handle{slot: i, gen: c.slots[i].gen}
	}

	var i int
	if n := len(c.free); n > 0 {
		i = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		c.slots = append(c.slots, containerSlot{})
		i = len(c.slots) - 1
	}

	s := &c.slots[i]
	s.gen++
	s.item = item
	s.live = true
	s.selected = false
	c.byItem[key] = i
	return Handle{slot: i, gen: s.gen}
}

// Unrealize releases a container. Stale handles are ignored.
func (c *Containers) Unrealize(h Handle) {
	s := c.get(h)
	if s == nil {
		return
	}
	delete(c.byItem, collections.KeyOf(s.item))
	s.live = false
	s.item = nil
	c.free = append(c.free, h.slot)
}

// UnrealizeItem releases the container of item, if realized
func (c *Containers) UnrealizeItem(item any) {
	if h, ok := c.Lookup(item); ok {
		c.Unrealize(h)
	}
}

// UnrealizeAll releases every container
func (c *Containers) UnrealizeAll() {
	for i := range c.slots {
		if c.slots[i].live {
			c.Unrealize(Handle{slot: i, gen: c.slots[i].gen})
		}
	}
}

// Lookup returns the handle of item's container
func (c *Containers) Lookup(item any) (Handle, bool) {
	i, ok := c.byItem[collections.KeyOf(item)]
	if !ok {
		return Handle{}, false
	}
	return Handle{slot: i, gen: c.slots[i].gen}, true
}

// Item returns the item a handle refers to
func (c *Containers) Item(h Handle) (any, bool) {
	s := c.get(h)
	if s == nil {
		return nil, false
	}
	return s.item, true
}

// Len returns the number of realized containers
func (c *Containers) Len() int {
	return len(c.byItem)
}

// SetSelected updates the selected flag of item's container, if realized
func (c *Containers) SetSelected(item any, selected bool) {
	if h, ok := c.Lookup(item); ok {
		c.slots[h.slot].selected = selected
	}
}

// IsSelected reports the selected flag of item's container
func (c *Containers) IsSelected(item any) bool {
	h, ok := c.Lookup(item)
	if !ok {
		return false
	}
	return c.slots[h.slot].selected
}

// MarkPreselected realizes item's container already flagged as selected,
// as when an item arrives marked in its source before the selector knows it.
func (c *Containers) MarkPreselected(item any) Handle {
	h := c.Realize(item)
	c.slots[h.slot].selected = true
	return h
}

func (c *Containers) get(h Handle) *containerSlot {
	if h.slot < 0 || h.slot >= len(c.slots) {
		return nil
	}
	s := &c.slots[h.slot]
	if !s.live || s.gen != h.gen {
		return nil
	}
	return s
}
