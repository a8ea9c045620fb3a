package ui

import (
	"listpick/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// inputMode is the state of the key handling
type inputMode int

const (
	modeNormal inputMode = iota
	modeInsert
	modeSearch
)

func (m inputMode) String() string {
	switch m {
	case modeInsert:
		return "insert"
	case modeSearch:
		return "search"
	default:
		return "normal"
	}
}
