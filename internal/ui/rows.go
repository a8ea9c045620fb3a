package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"listpick/internal/domain"
	"listpick/internal/selection"
)

// row is the view-side record of one item
type row struct {
	item   *domain.Item
	handle selection.Handle // zero while the row is off screen
}

// rowMirror keeps the rows in lockstep with the items list and owns the
// container lifecycle: rows entering the viewport are realized, rows leaving
// it or removed from the list are unrealized.
type rowMirror struct {
	rows       []*row
	containers *selection.Containers
	isSelected func(item any) bool
}

func newRowMirror(containers *selection.Containers, isSelected func(item any) bool) *rowMirror {
	return &rowMirror{containers: containers, isSelected: isSelected}
}

func (r *rowMirror) InsertItem(index int, item any) {
	it, _ := item.(*domain.Item)
	nr := &row{item: it}
	if index < 0 || index > len(r.rows) {
		index = len(r.rows)
	}
	r.rows = append(r.rows, nil)
	copy(r.rows[index+1:], r.rows[index:])
	r.rows[index] = nr
}

func (r *rowMirror) RemoveItem(index int, item any) {
	if index < 0 || index >= len(r.rows) {
		return
	}
	r.unrealize(r.rows[index])
	r.rows = append(r.rows[:index], r.rows[index+1:]...)
}

func (r *rowMirror) Reset() {
	for _, rw := range r.rows {
		r.unrealize(rw)
	}
	r.rows = nil
}

func (r *rowMirror) AddItem(item any) {
	r.InsertItem(len(r.rows), item)
}

func (r *rowMirror) MoveItem(oldIndex, newIndex int, item any) {
	if oldIndex < 0 || oldIndex >= len(r.rows) || newIndex < 0 || newIndex >= len(r.rows) {
		return
	}
	rw := r.rows[oldIndex]
	r.rows = append(r.rows[:oldIndex], r.rows[oldIndex+1:]...)
	r.rows = append(r.rows, nil)
	copy(r.rows[newIndex+1:], r.rows[newIndex:])
	r.rows[newIndex] = rw
}

// realize makes the container set match the visible window [from, to)
func (r *rowMirror) realize(from, to int) {
	for i, rw := range r.rows {
		_, realized := r.containers.Lookup(rw.item)
		visible := i >= from && i < to
		switch {
		case visible && !realized:
			rw.handle = r.containers.Realize(rw.item)
			// A new container reflects the current selection
			r.containers.SetSelected(rw.item, r.isSelected(rw.item))
		case visible:
			rw.handle, _ = r.containers.Lookup(rw.item)
		case realized:
			r.containers.UnrealizeItem(rw.item)
			rw.handle = selection.Handle{}
		}
	}
}

func (r *rowMirror) unrealize(rw *row) {
	if rw == nil || !rw.handle.Valid() {
		return
	}
	r.containers.Unrealize(rw.handle)
	rw.handle = selection.Handle{}
}

// renderRow draws one row within width columns
func renderRow(rw *row, index int, cursor, multi, selected, showIndex bool, width int, styles *Styles) string {
	var b strings.Builder

	if cursor {
		b.WriteString(styles.Cursor.Render("> "))
	} else {
		b.WriteString("  ")
	}

	marker := "( ) "
	if multi {
		marker = "[ ] "
	}
	if selected {
		if multi {
			marker = "[x] "
		} else {
			marker = "(*) "
		}
		marker = styles.Selected.Render(marker)
	}
	b.WriteString(marker)

	if showIndex {
		b.WriteString(styles.Index.Render(fmt.Sprintf("%3d ", index)))
	}

	label := ""
	if rw.item != nil {
		label = rw.item.Label
	}
	// Prefix takes cursor (2) + marker (4) + optional index (4) columns
	avail := width - 6
	if showIndex {
		avail -= 4
	}
	if avail > 0 && runewidth.StringWidth(label) > avail {
		label = runewidth.Truncate(label, avail, "…")
	}

	style := styles.Row
	if cursor {
		style = styles.CursorRow
	}
	if selected {
		style = style.Inherit(styles.Selected)
	}
	b.WriteString(style.Render(label))
	return b.String()
}
