package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listpick/internal/collections"
)

type recorder struct {
	changes []SelectionChange
	props   []PropertyChange
	errs    []error
}

func newSelector(t *testing.T, mode Mode, items ...any) (*Selector, *collections.List, *recorder) {
	t.Helper()
	rec := &recorder{}
	list := collections.NewList(items...)
	s, err := New(list, WithMode(mode), WithErrorHandler(func(err error) {
		rec.errs = append(rec.errs, err)
	}))
	require.NoError(t, err)
	s.OnSelectionChanged(func(c SelectionChange) { rec.changes = append(rec.changes, c) })
	s.OnPropertyChanged(func(p PropertyChange) { rec.props = append(rec.props, p) })
	t.Cleanup(s.Close)
	return s, list, rec
}

func (r *recorder) indexChanges() []PropertyChange {
	var out []PropertyChange
	for _, p := range r.props {
		if p.Property == PropertySelectedIndex {
			out = append(out, p)
		}
	}
	return out
}

func TestNewRequiresItems(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilArgument)
}

func TestSelectThenDeselect(t *testing.T) {
	s, _, rec := newSelector(t, Single, "A", "B", "C")

	require.NoError(t, s.SetSelectedIndex(1))
	assert.Equal(t, "B", s.SelectedItem())
	assert.Equal(t, 1, s.SelectedIndex())
	require.Len(t, rec.changes, 1)
	assert.Equal(t, []any{"B"}, rec.changes[0].Added)

	require.NoError(t, s.SetSelectedIndex(-1))
	assert.Nil(t, s.SelectedItem())
	assert.Equal(t, -1, s.SelectedIndex())
	require.Len(t, rec.changes, 2)
	assert.Equal(t, []any{"B"}, rec.changes[1].Removed)
	assert.Empty(t, rec.changes[1].Added)
	assert.Equal(t, 0, s.SelectedItems().Len())
}

func TestSelectingSameIndexAgainIsQuiet(t *testing.T) {
	s, _, rec := newSelector(t, Single, "A", "B")

	require.NoError(t, s.SetSelectedIndex(0))
	require.NoError(t, s.SetSelectedIndex(0))

	assert.Len(t, rec.changes, 1)
	assert.Len(t, rec.indexChanges(), 1)
}

func TestMultiSelectThroughSelectedItems(t *testing.T) {
	s, _, rec := newSelector(t, Multiple, "A", "B", "C")

	require.NoError(t, s.SelectedItems().Append("A"))
	require.NoError(t, s.SelectedItems().Append("C"))

	assert.Equal(t, []any{"A", "C"}, s.Storage().Items())
	assert.Equal(t, "A", s.SelectedItem())
	assert.Equal(t, 0, s.SelectedIndex())
	require.Len(t, rec.changes, 2)
	assert.Equal(t, []any{"A"}, rec.changes[0].Added)
	assert.Equal(t, []any{"C"}, rec.changes[1].Added)

	_, err := s.SelectedItems().Remove("A")
	require.NoError(t, err)
	assert.Equal(t, []any{"C"}, s.Storage().Items())
	assert.Equal(t, "C", s.SelectedItem())
	assert.Equal(t, 2, s.SelectedIndex())
}

func TestSelectedItemsInSingleModeReplaces(t *testing.T) {
	s, _, _ := newSelector(t, Single, "A", "B")

	require.NoError(t, s.SelectedItems().Append("A"))
	require.NoError(t, s.SelectedItems().Append("B"))

	assert.Equal(t, []any{"B"}, s.Storage().Items())
	assert.Equal(t, []any{"B"}, s.SelectedItems().Items(), "the mirror drops the replaced item")
}

func TestSelectedItemsReplaceAndReset(t *testing.T) {
	s, _, rec := newSelector(t, Multiple, "A", "B", "C")
	require.NoError(t, s.SelectedItems().Append("A"))

	require.NoError(t, s.SelectedItems().Set(0, "B"))
	assert.Equal(t, []any{"B"}, s.Storage().Items())
	last := rec.changes[len(rec.changes)-1]
	assert.Equal(t, []any{"A"}, last.Removed)
	assert.Equal(t, []any{"B"}, last.Added)

	require.NoError(t, s.SelectedItems().Clear())
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, -1, s.SelectedIndex())
}

func TestSelectedItemsRejectsRangeActions(t *testing.T) {
	s, _, rec := newSelector(t, Multiple, "A", "B", "C")

	err := s.SelectedItems().InsertRange(0, "A", "B")
	require.ErrorIs(t, err, ErrRangeActionsNotSupported)
	assert.Equal(t, 0, s.SelectedItems().Len(), "nothing is applied")
	assert.Equal(t, 0, s.Count())

	require.NoError(t, s.SelectRange(0, 1, false))
	err = s.SelectedItems().RemoveRange(0, 2)
	require.ErrorIs(t, err, ErrRangeActionsNotSupported)
	assert.Equal(t, 2, s.Count())
	assert.Len(t, rec.changes, 1)
}

func TestSelectedItemsRejectsUnknownItem(t *testing.T) {
	s, _, _ := newSelector(t, Multiple, "A")

	err := s.SelectedItems().Append("Q")
	require.ErrorIs(t, err, ErrInvalidSelectedItem)
	assert.Equal(t, 0, s.SelectedItems().Len())
}

func TestOutOfRangeIndexIsRejected(t *testing.T) {
	s, _, rec := newSelector(t, Single, "A", "B")

	err := s.SetSelectedIndex(5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, -1, s.SelectedIndex())

	require.NoError(t, s.SetSelectedIndex(1))
	require.ErrorIs(t, s.SetSelectedIndex(-2), ErrIndexOutOfRange)
	assert.Equal(t, 1, s.SelectedIndex())
	assert.Equal(t, "B", s.SelectedItem())
	assert.Len(t, rec.changes, 1)
}

func TestInvalidSelectedItemIsRejected(t *testing.T) {
	s, _, _ := newSelector(t, Single, "A", "B")
	require.NoError(t, s.SetSelectedItem("A"))

	err := s.SetSelectedItem("Z")
	require.ErrorIs(t, err, ErrInvalidSelectedItem)
	assert.Equal(t, "A", s.SelectedItem())
	assert.Equal(t, 0, s.SelectedIndex())

	require.NoError(t, s.SetSelectedItem(nil))
	assert.Equal(t, -1, s.SelectedIndex())
}

func TestSourceResetWithPreselectedContainer(t *testing.T) {
	s, list, rec := newSelector(t, Single, "A", "B")
	require.NoError(t, s.SetSelectedIndex(0))

	s.Containers().MarkPreselected("X")
	require.NoError(t, list.Reset("X", "Y"))

	assert.Equal(t, []any{"X"}, s.Storage().Items())
	assert.Equal(t, 0, s.SelectedIndex())
	require.Len(t, rec.changes, 2)
	assert.Equal(t, []any{"A"}, rec.changes[1].Removed)
	assert.Equal(t, []any{"X"}, rec.changes[1].Added)
	assert.Empty(t, rec.errs)
}

func TestSourceResetWithItemTemplateSkipsContainers(t *testing.T) {
	list := collections.NewList("A", "B")
	s, err := New(list, WithMode(Multiple), WithItemTemplate(true))
	require.NoError(t, err)
	defer s.Close()

	s.Containers().MarkPreselected("X")
	require.NoError(t, list.Reset("X"))
	assert.Equal(t, 0, s.Count())
}

func TestSourceInsertShiftsSelectedIndex(t *testing.T) {
	s, list, rec := newSelector(t, Single, "A", "B", "C")
	require.NoError(t, s.SetSelectedIndex(1))

	require.NoError(t, list.Insert(0, "Z"))

	assert.Equal(t, 2, s.SelectedIndex())
	assert.Equal(t, "B", s.SelectedItem())
	assert.Equal(t, 2, s.Storage().StoredIndexOf("B"), "the invalidated index is resolved again")
	assert.Len(t, rec.changes, 1, "a pure index shift is not a selection change")

	shifts := rec.indexChanges()
	last := shifts[len(shifts)-1]
	assert.Equal(t, 1, last.Old)
	assert.Equal(t, 2, last.New)
}

func TestSourceInsertAfterSelectionKeepsIndex(t *testing.T) {
	s, list, rec := newSelector(t, Single, "A", "B")
	require.NoError(t, s.SetSelectedIndex(0))
	props := len(rec.props)

	require.NoError(t, list.Append("C"))
	assert.Equal(t, 0, s.SelectedIndex())
	assert.Len(t, rec.props, props)
}

func TestSourceAddOfPreselectedItem(t *testing.T) {
	s, list, rec := newSelector(t, Multiple, "A")
	require.NoError(t, s.SetSelectedIndex(0))

	s.Containers().MarkPreselected("D")
	require.NoError(t, list.Append("D"))

	assert.Equal(t, []any{"A", "D"}, s.Storage().Items())
	assert.Equal(t, []any{"D"}, rec.changes[len(rec.changes)-1].Added)
	assert.Equal(t, 1, s.Storage().StoredIndexOf("D"))
}

func TestSourceRemoveUnselects(t *testing.T) {
	s, list, rec := newSelector(t, Single, "A", "B", "C")
	require.NoError(t, s.SetSelectedIndex(1))

	_, err := list.Remove("B")
	require.NoError(t, err)

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, -1, s.SelectedIndex())
	assert.Nil(t, s.SelectedItem())
	assert.Equal(t, []any{"B"}, rec.changes[len(rec.changes)-1].Removed)
}

func TestSourceRemoveBeforeSelectionShiftsIndex(t *testing.T) {
	s, list, _ := newSelector(t, Single, "A", "B", "C")
	require.NoError(t, s.SetSelectedIndex(2))

	require.NoError(t, list.RemoveAt(0))
	assert.Equal(t, 1, s.SelectedIndex())
	assert.Equal(t, "C", s.SelectedItem())
}

func TestSourceRemoveOfDuplicateValueKeepsSelection(t *testing.T) {
	s, list, _ := newSelector(t, Single, "A", "B", "A")
	require.NoError(t, s.SetSelectedIndex(0))

	require.NoError(t, list.RemoveAt(0))
	assert.True(t, s.IsSelected("A"), "an equal value is still in the source")
	assert.Equal(t, 1, s.SelectedIndex())
}

func TestSourceReplaceUnselectsOldItem(t *testing.T) {
	s, list, rec := newSelector(t, Single, "A", "B")
	require.NoError(t, s.SetSelectedIndex(1))

	require.NoError(t, list.Set(1, "Q"))
	assert.Equal(t, -1, s.SelectedIndex())
	assert.Equal(t, []any{"B"}, rec.changes[len(rec.changes)-1].Removed)
}

func TestSourceMoveUpdatesIndex(t *testing.T) {
	s, list, rec := newSelector(t, Single, "A", "B", "C")
	require.NoError(t, s.SetSelectedIndex(0))

	require.NoError(t, list.Move(0, 2))
	assert.Equal(t, 2, s.SelectedIndex())
	assert.Equal(t, "A", s.SelectedItem())
	assert.Len(t, rec.changes, 1)
}

func TestSetItemsSource(t *testing.T) {
	s, _, rec := newSelector(t, Single, "A", "B")
	require.NoError(t, s.SetSelectedIndex(0))

	next := collections.NewList("X", "Y")
	require.NoError(t, s.SetItemsSource(next))
	assert.Equal(t, 0, s.Count())
	assert.Same(t, next, s.Items())
	assert.Equal(t, []any{"A"}, rec.changes[len(rec.changes)-1].Removed)

	require.NoError(t, next.Insert(0, "W"))
	require.NoError(t, s.SetSelectedIndex(0))
	assert.Equal(t, "W", s.SelectedItem())

	require.ErrorIs(t, s.SetItemsSource(nil), ErrNilArgument)
}

func TestInitDefersSelectedIndex(t *testing.T) {
	s, list, rec := newSelector(t, Single)

	s.BeginInit()
	require.NoError(t, s.SetSelectedIndex(1), "writes during init are not validated yet")
	assert.Equal(t, -1, s.SelectedIndex())

	require.NoError(t, list.Append("A"))
	require.NoError(t, list.Append("B"))
	require.NoError(t, s.EndInit())

	assert.Equal(t, 1, s.SelectedIndex())
	assert.Equal(t, "B", s.SelectedItem())
	shifts := rec.indexChanges()
	require.Len(t, shifts, 1)
	assert.Equal(t, -1, shifts[0].Old)
	assert.Equal(t, 1, shifts[0].New)
}

func TestInitDeferredItemAndLaterValidation(t *testing.T) {
	s, _, _ := newSelector(t, Single, "A", "B")

	s.BeginInit()
	require.NoError(t, s.SetSelectedItem("Nope"))
	require.ErrorIs(t, s.EndInit(), ErrInvalidSelectedItem)
	assert.Equal(t, -1, s.SelectedIndex())

	s.BeginInit()
	require.NoError(t, s.SetSelectedItem("B"))
	require.NoError(t, s.EndInit())
	assert.Equal(t, 1, s.SelectedIndex())

	require.NoError(t, s.EndInit(), "EndInit without BeginInit is a no-op")
}

func TestInitPrefersSelectionMadeMeanwhile(t *testing.T) {
	s, list, _ := newSelector(t, Multiple, "A")

	s.BeginInit()
	require.NoError(t, s.SetSelectedIndex(0))
	s.Containers().MarkPreselected("B")
	require.NoError(t, list.Append("B"))
	require.NoError(t, s.EndInit())

	assert.Equal(t, []any{"B"}, s.Storage().Items())
	assert.Equal(t, 1, s.SelectedIndex())
}

func TestSelectRange(t *testing.T) {
	s, _, rec := newSelector(t, Multiple, "A", "B", "C", "D")
	require.NoError(t, s.SetSelectedIndex(3))

	require.NoError(t, s.SelectRange(1, 0, true))
	assert.Equal(t, []any{"A", "B"}, s.Storage().Items())
	last := rec.changes[len(rec.changes)-1]
	assert.Equal(t, []any{"D"}, last.Removed)
	assert.Equal(t, []any{"A", "B"}, last.Added)

	require.NoError(t, s.SelectRange(1, 2, false))
	assert.Equal(t, []any{"A", "B", "C"}, s.Storage().Items())

	require.ErrorIs(t, s.SelectRange(0, 9, false), ErrIndexOutOfRange)
}

func TestSelectAllAndUnselectAll(t *testing.T) {
	s, _, rec := newSelector(t, Multiple, "A", "B", "C")

	require.NoError(t, s.SelectAll())
	assert.Equal(t, 3, s.Count())
	require.Len(t, rec.changes, 1, "one coalesced notification")
	assert.Equal(t, []any{"A", "B", "C"}, s.SelectedItems().Items())

	require.NoError(t, s.UnselectAll())
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, s.SelectedItems().Len())

	single, _, _ := newSelector(t, Single, "A")
	require.ErrorIs(t, single.SelectAll(), ErrMultipleSelectionOnly)
}

func TestSelectItems(t *testing.T) {
	s, _, rec := newSelector(t, Multiple, "A", "B", "C")

	require.NoError(t, s.SelectItems([]any{"C", "missing", "A"}))
	assert.Equal(t, []any{"C", "A"}, s.Storage().Items())
	assert.Equal(t, "C", s.SelectedItem())
	assert.Equal(t, 2, s.SelectedIndex())
	assert.Len(t, rec.changes, 1)

	require.ErrorIs(t, s.SelectItems(nil), ErrNilArgument)
}

func TestToggle(t *testing.T) {
	s, _, _ := newSelector(t, Multiple, "A", "B")
	require.NoError(t, s.Toggle(0))
	require.NoError(t, s.Toggle(1))
	assert.Equal(t, 2, s.Count())
	require.NoError(t, s.Toggle(0))
	assert.Equal(t, []any{"B"}, s.Storage().Items())
	require.ErrorIs(t, s.Toggle(4), ErrIndexOutOfRange)

	single, _, _ := newSelector(t, Single, "A", "B")
	require.NoError(t, single.Toggle(0))
	require.NoError(t, single.Toggle(1))
	assert.Equal(t, []any{"B"}, single.Storage().Items())
}

func TestContainersFollowSelection(t *testing.T) {
	s, _, _ := newSelector(t, Multiple, "A", "B")
	s.Containers().Realize("A")
	s.Containers().Realize("B")

	require.NoError(t, s.Toggle(1))
	assert.True(t, s.Containers().IsSelected("B"))
	assert.False(t, s.Containers().IsSelected("A"))

	require.NoError(t, s.UnselectAll())
	assert.False(t, s.Containers().IsSelected("B"))
}

func TestWritesFromMirrorListenersAreIgnored(t *testing.T) {
	s, _, _ := newSelector(t, Multiple, "A", "B", "C")

	var nested []error
	s.SelectedItems().Subscribe(func(collections.ChangeEvent) {
		nested = append(nested, s.SetSelectedIndex(2))
	})

	require.NoError(t, s.Toggle(0))
	require.Len(t, nested, 1)
	assert.NoError(t, nested[0])
	assert.Equal(t, []any{"A"}, s.Storage().Items(), "the nested write did not apply")
}

// replay applies deltas in order and returns the resulting selection
func replay(changes []SelectionChange) map[any]bool {
	out := make(map[any]bool)
	for _, c := range changes {
		for _, it := range c.Removed {
			delete(out, it)
		}
		for _, it := range c.Added {
			out[it] = true
		}
	}
	return out
}

func TestWritesFromPropertyListenersAreIgnored(t *testing.T) {
	s, _, rec := newSelector(t, Single, "A", "B", "C")
	require.NoError(t, s.SetSelectedIndex(0))

	var nested []error
	s.OnPropertyChanged(func(p PropertyChange) {
		if p.Property == PropertySelectedIndex && p.New == 2 {
			nested = append(nested, s.SetSelectedIndex(1))
		}
	})

	require.NoError(t, s.SetSelectedIndex(2))
	require.Len(t, nested, 1)
	assert.NoError(t, nested[0])
	assert.Equal(t, []any{"C"}, s.Storage().Items(), "the nested write did not apply")
	assert.Equal(t, 2, s.SelectedIndex())

	require.Len(t, rec.changes, 2)
	assert.Equal(t, SelectionChange{Removed: []any{"A"}, Added: []any{"C"}}, rec.changes[1])
	assert.Equal(t, map[any]bool{"C": true}, replay(rec.changes))
}

func TestDeltasFromSelectionListenersArriveInOrder(t *testing.T) {
	s, _, _ := newSelector(t, Multiple, "A", "B", "C")

	// Selecting A also selects B, from inside a listener
	s.OnSelectionChanged(func(c SelectionChange) {
		if len(c.Added) == 1 && c.Added[0] == "A" {
			require.NoError(t, s.Toggle(1))
		}
	})
	var seen []SelectionChange
	s.OnSelectionChanged(func(c SelectionChange) { seen = append(seen, c) })

	require.NoError(t, s.Toggle(0))
	require.Len(t, seen, 2)
	assert.Equal(t, []any{"A"}, seen[0].Added)
	assert.Equal(t, []any{"B"}, seen[1].Added)
	assert.Equal(t, []any{"A", "B"}, s.Storage().Items())
	assert.Equal(t, map[any]bool{"A": true, "B": true}, replay(seen))
}

func TestSelectedItemsRejectsDuplicates(t *testing.T) {
	s, _, rec := newSelector(t, Multiple, "A", "B", "C")

	require.NoError(t, s.SelectedItems().Append("A"))
	err := s.SelectedItems().Append("A")
	require.ErrorIs(t, err, ErrInvalidSelectedItem)
	assert.Equal(t, []any{"A"}, s.SelectedItems().Items())
	assert.Equal(t, 1, s.Count())

	require.NoError(t, s.SelectedItems().Append("B"))
	require.ErrorIs(t, s.SelectedItems().Set(1, "A"), ErrInvalidSelectedItem)
	assert.Equal(t, []any{"A", "B"}, s.SelectedItems().Items())

	// Replacing an item with itself is allowed and changes nothing
	changes := len(rec.changes)
	require.NoError(t, s.SelectedItems().Set(0, "A"))
	assert.Len(t, rec.changes, changes)

	require.ErrorIs(t, s.SelectedItems().Reset("C", "C"), ErrInvalidSelectedItem)
	assert.Equal(t, []any{"A", "B"}, s.Storage().Items())
	assert.Equal(t, s.Storage().Items(), s.SelectedItems().Items())
}

func TestSelectedItemsRejectsDuplicateInSingleMode(t *testing.T) {
	s, _, _ := newSelector(t, Single, "A", "B")
	require.NoError(t, s.SetSelectedIndex(0))

	require.ErrorIs(t, s.SelectedItems().Append("A"), ErrInvalidSelectedItem)
	assert.Equal(t, []any{"A"}, s.SelectedItems().Items())
	assert.Equal(t, s.Count(), s.SelectedItems().Len())
}

func TestPointerItemsUseReferenceIdentity(t *testing.T) {
	type row struct{ label string }
	a := &row{label: "x"}
	b := &row{label: "x"}
	s, _, _ := newSelector(t, Multiple, a, b)

	require.NoError(t, s.SelectAll())
	assert.Equal(t, 2, s.Count())

	require.ErrorIs(t, s.SetSelectedItem(&row{label: "x"}), ErrInvalidSelectedItem)
}
