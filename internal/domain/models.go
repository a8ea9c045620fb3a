package domain

import "github.com/google/uuid"

// Item is one pickable entry. Items are held by pointer so two entries with
// the same label stay distinct.
type Item struct {
	ID          string
	Label       string
	Value       string // printed on accept; defaults to Label
	Preselected bool   // selected when the list is first shown
}

// NewItem creates an item with a fresh ID
func NewItem(label, value string) *Item {
	if value == "" {
		value = label
	}
	return &Item{
		ID:    uuid.NewString(),
		Label: label,
		Value: value,
	}
}

// String returns the label, so items print sensibly in logs and errors
func (i *Item) String() string {
	if i == nil {
		return "<nil>"
	}
	return i.Label
}

// PickResult is what the picker hands back on exit
type PickResult struct {
	Aborted bool
	Items   []*Item
}

// Values returns the values of the picked items in selection order
func (r PickResult) Values() []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Value)
	}
	return out
}

// IDs returns the IDs of the picked items in selection order
func (r PickResult) IDs() []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.ID)
	}
	return out
}
