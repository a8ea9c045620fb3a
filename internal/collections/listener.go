package collections

import (
	"fmt"
	"log"
)

// Target is a structurally different collection kept in lockstep with a source list
type Target interface {
	InsertItem(index int, item any)
	RemoveItem(index int, item any)
	Reset()
	AddItem(item any)
	MoveItem(oldIndex, newIndex int, item any)
}

// ChangeListener mirrors a source list into a Target
type ChangeListener struct {
	target      Target
	source      *List
	unsubscribe func()

	// OnError receives contract violations such as an unknown action.
	// Defaults to logging.
	OnError func(error)
}

// NewChangeListener creates a listener for target. Call Attach to start mirroring.
func NewChangeListener(target Target) *ChangeListener {
	return &ChangeListener{
		target: target,
		OnError: func(err error) {
			log.Printf("ChangeListener: %v", err)
		},
	}
}

// Attach starts mirroring source, replacing any previous source.
// The target is reset and repopulated from the current source content.
func (c *ChangeListener) Attach(source *List) {
	c.Detach()
	c.source = source
	if source == nil {
		return
	}

	c.target.Reset()
	for _, item := range source.Items() {
		c.target.AddItem(item)
	}
	c.unsubscribe = source.Subscribe(c.handle)
}

// Detach stops mirroring
func (c *ChangeListener) Detach() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.source = nil
}

// Source returns the attached list, or nil
func (c *ChangeListener) Source() *List {
	return c.source
}

func (c *ChangeListener) handle(ev ChangeEvent) {
	if err := c.apply(ev); err != nil && c.OnError != nil {
		c.OnError(err)
	}
}

func (c *ChangeListener) apply(ev ChangeEvent) error {
	switch ev.Action {
	case ActionAdd:
		for i, item := range ev.NewItems {
			c.target.InsertItem(ev.NewIndex+i, item)
		}

	case ActionRemove:
		for _, item := range ev.OldItems {
			c.target.RemoveItem(ev.OldIndex, item)
		}

	case ActionReplace:
		for _, item := range ev.OldItems {
			c.target.RemoveItem(ev.OldIndex, item)
		}
		for i, item := range ev.NewItems {
			c.target.InsertItem(ev.NewIndex+i, item)
		}

	case ActionReset:
		c.target.Reset()
		if c.source != nil {
			for _, item := range c.source.Items() {
				c.target.AddItem(item)
			}
		}

	case ActionMove:
		for i, item := range ev.OldItems {
			c.target.MoveItem(ev.OldIndex+i, ev.NewIndex+i, item)
		}

	default:
		return fmt.Errorf("%s: %w", ev.Action, ErrUnknownAction)
	}
	return nil
}
