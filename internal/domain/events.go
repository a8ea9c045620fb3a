package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSelectionChanged EventType = "SelectionChanged"
	EventItemsChanged     EventType = "ItemsChanged"
	EventError            EventType = "Error"
	EventConfigLoaded     EventType = "ConfigLoaded"
	EventConfigSaved      EventType = "ConfigSaved"
	EventSelectionSaved   EventType = "SelectionSaved"
	EventPickCompleted    EventType = "PickCompleted"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SelectionChangedEvent is emitted after every committed selection change
type SelectionChangedEvent struct {
	Added    []*Item
	Removed  []*Item
	Selected []*Item // full selection after the change, in selection order
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// ItemsChangedEvent is emitted when the item list is edited
type ItemsChangedEvent struct {
	Action string
	Count  int
}

func (e ItemsChangedEvent) Type() EventType { return EventItemsChanged }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path  string
	Items int
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// SelectionSavedEvent is emitted when the remembered selection is written
type SelectionSavedEvent struct {
	Path   string
	Values []string
}

func (e SelectionSavedEvent) Type() EventType { return EventSelectionSaved }

// PickCompletedEvent is emitted when the user accepts or aborts
type PickCompletedEvent struct {
	Result PickResult
}

func (e PickCompletedEvent) Type() EventType { return EventPickCompleted }
