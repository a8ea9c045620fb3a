package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"listpick/internal/collections"
	"listpick/internal/config"
	"listpick/internal/domain"
	"listpick/internal/eventbus"
	"listpick/internal/selection"
)

// Model represents the UI state
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	sel    *selection.Selector
	items  *collections.List

	rows     *rowMirror
	listener *collections.ChangeListener

	keys   keyMap
	help   help.Model
	input  textinput.Model
	mode   inputMode
	styles *Styles

	cursor       int
	offset       int
	searchOrigin int
	width        int
	height       int

	status    string
	statusErr bool

	result domain.PickResult
	done   bool

	helpOps *HelpOps
}

// NewModel creates the picker over the items of sel
func NewModel(bus eventbus.EventBus, cfg *config.Config, sel *selection.Selector) *Model {
	ti := textinput.New()
	ti.CharLimit = 256

	m := &Model{
		bus:    bus,
		config: cfg,
		sel:    sel,
		items:  sel.Items(),
		keys:   newKeyMap(sel.Mode() == selection.Multiple),
		help:   help.New(),
		input:  ti,
		styles: NewStyles(cfg.UISettings),
	}

	// Rows follow the items list after the selector has seen each change
	m.rows = newRowMirror(sel.Containers(), sel.IsSelected)
	m.listener = collections.NewChangeListener(m.rows)
	m.listener.OnError = m.reportError
	m.listener.Attach(m.items)

	sel.OnSelectionChanged(m.publishSelection)

	if idx := sel.SelectedIndex(); idx >= 0 {
		m.cursor = idx
	}
	m.ensureVisible()
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.helpOps = NewHelpOps(p)
}

// Close stops mirroring the items list
func (m *Model) Close() {
	m.listener.Detach()
}

// Result returns what the user picked. Only meaningful once the program ended.
func (m *Model) Result() domain.PickResult {
	if !m.done {
		return domain.PickResult{Aborted: true}
	}
	return m.result
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("help pager: %w", msg.err))
		}
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeInsert:
			return m.updateInsert(msg)
		case modeSearch:
			return m.updateSearch(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.statusErr = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.finish(true)

	case key.Matches(msg, m.keys.Accept):
		return m.accept()

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.listHeight())
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-m.items.Len())
	case key.Matches(msg, m.keys.End):
		m.moveCursor(m.items.Len())

	case key.Matches(msg, m.keys.Toggle):
		if m.items.Len() > 0 {
			m.setError(m.sel.Toggle(m.cursor))
		}
	case key.Matches(msg, m.keys.SelectAll):
		m.setError(m.sel.SelectAll())
	case key.Matches(msg, m.keys.None):
		m.setError(m.sel.UnselectAll())

	case key.Matches(msg, m.keys.Insert):
		m.mode = modeInsert
		m.input.Prompt = "new item: "
		m.input.Placeholder = "label"
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Delete):
		m.deleteAtCursor()
	case key.Matches(msg, m.keys.MoveUp):
		m.moveItem(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.moveItem(1)

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.searchOrigin = m.cursor
		m.input.Prompt = "/"
		m.input.Placeholder = ""
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Help):
		if m.helpOps == nil {
			m.setError(fmt.Errorf("help pager unavailable"))
			return m, nil
		}
		return m, m.helpOps.showHelpPager(renderHelpContent(m.keys, m.multi()))
	}

	m.ensureVisible()
	return m, nil
}

func (m *Model) updateInsert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.leaveInput()
		return m, nil
	case tea.KeyEnter:
		label := strings.TrimSpace(m.input.Value())
		m.leaveInput()
		if label != "" {
			m.insertAfterCursor(domain.NewItem(label, ""))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.cursor = m.searchOrigin
		m.leaveInput()
		m.ensureVisible()
		return m, nil
	case tea.KeyEnter:
		m.leaveInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if idx := closestMatch(m.input.Value(), m.labels()); idx >= 0 {
		m.cursor = idx
	} else {
		m.cursor = m.searchOrigin
	}
	m.ensureVisible()
	return m, cmd
}

func (m *Model) leaveInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) accept() (tea.Model, tea.Cmd) {
	// In single mode enter picks the row under the cursor
	if !m.multi() && m.items.Len() > 0 {
		it, _ := m.items.Get(m.cursor)
		if !m.sel.IsSelected(it) {
			if err := m.sel.SetSelectedIndex(m.cursor); err != nil {
				m.setError(err)
				return m, nil
			}
		}
	}
	return m.finish(false)
}

func (m *Model) finish(aborted bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.result = domain.PickResult{Aborted: aborted}
	if !aborted {
		m.result.Items = toItems(m.sel.Storage().Items())
	}
	log.Printf("UI: pick completed, aborted=%v, items=%v", aborted, m.result.IDs())
	m.publish(eventbus.PickCompletedEvent{Result: m.result})
	return m, tea.Quit
}

func (m *Model) insertAfterCursor(item *domain.Item) {
	index := 0
	if m.items.Len() > 0 {
		index = m.cursor + 1
	}
	if err := m.items.Insert(index, item); err != nil {
		m.setError(err)
		return
	}
	m.cursor = index
	m.ensureVisible()
	m.publish(eventbus.ItemsChangedEvent{Action: "insert", Count: m.items.Len()})
}

func (m *Model) deleteAtCursor() {
	if m.items.Len() == 0 {
		return
	}
	if err := m.items.RemoveAt(m.cursor); err != nil {
		m.setError(err)
		return
	}
	if m.cursor >= m.items.Len() {
		m.cursor = max(m.items.Len()-1, 0)
	}
	m.publish(eventbus.ItemsChangedEvent{Action: "delete", Count: m.items.Len()})
}

func (m *Model) moveItem(delta int) {
	target := m.cursor + delta
	if target < 0 || target >= m.items.Len() {
		return
	}
	if err := m.items.Move(m.cursor, target); err != nil {
		m.setError(err)
		return
	}
	m.cursor = target
	m.publish(eventbus.ItemsChangedEvent{Action: "move", Count: m.items.Len()})
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= m.items.Len() {
		m.cursor = m.items.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// ensureVisible scrolls so the cursor is on screen and realizes that window
func (m *Model) ensureVisible() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if maxOffset := max(m.items.Len()-h, 0); m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
	m.rows.realize(m.offset, m.offset+h)
}

// listHeight is the number of rows that fit between the title and the footer
func (m *Model) listHeight() int {
	h := m.config.UISettings.MaxHeight
	if m.height > 0 {
		// title (2), status (2), prompt (1), help (1)
		avail := m.height - 6
		if h <= 0 || avail < h {
			h = avail
		}
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch e := event.(type) {
	case eventbus.ErrorEvent:
		m.status = e.Message
		m.statusErr = true
	case eventbus.SelectionSavedEvent:
		log.Printf("UI: selection saved to %s", e.Path)
	}
}

func (m *Model) publishSelection(change selection.SelectionChange) {
	m.publish(eventbus.SelectionChangedEvent{
		Added:    toItems(change.Added),
		Removed:  toItems(change.Removed),
		Selected: toItems(m.sel.Storage().Items()),
	})
}

func (m *Model) publish(event eventbus.DomainEvent) {
	if m.bus != nil {
		m.bus.Publish(event)
	}
}

func (m *Model) reportError(err error) {
	log.Printf("UI: %v", err)
	m.setError(err)
}

func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) multi() bool {
	return m.sel.Mode() == selection.Multiple
}

func (m *Model) labels() []string {
	out := make([]string, len(m.rows.rows))
	for i, rw := range m.rows.rows {
		if rw.item != nil {
			out[i] = rw.item.Label
		}
	}
	return out
}

func toItems(values []any) []*domain.Item {
	out := make([]*domain.Item, 0, len(values))
	for _, v := range values {
		if it, ok := v.(*domain.Item); ok {
			out = append(out, it)
		}
	}
	return out
}

// View renders the UI
func (m *Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.config.Title))
	b.WriteString("\n")

	width := m.width
	if width <= 0 {
		width = 80
	}

	if len(m.rows.rows) == 0 {
		b.WriteString(m.styles.Help.Render("  no items, press i to add one"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.listHeight(), len(m.rows.rows))
	for i := m.offset; i < end; i++ {
		rw := m.rows.rows[i]
		selected := m.sel.Containers().IsSelected(rw.item)
		b.WriteString(renderRow(rw, i, i == m.cursor, m.multi(), selected, m.config.UISettings.ShowIndex, width, m.styles))
		b.WriteString("\n")
	}
	if len(m.rows.rows) > m.listHeight() {
		b.WriteString(m.styles.Scroll.Render(fmt.Sprintf("  %d-%d of %d", m.offset+1, end, len(m.rows.rows))))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.mode != modeNormal {
		b.WriteString(m.styles.Prompt.Render(m.input.View()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderStatus() string {
	if m.status != "" {
		if m.statusErr {
			return m.styles.StatusError.Render(m.status)
		}
		return m.styles.Status.Render(m.status)
	}

	primary := "none"
	if it, ok := m.sel.SelectedItem().(*domain.Item); ok {
		primary = fmt.Sprintf("%s (#%d)", it.Label, m.sel.SelectedIndex())
	}
	return m.styles.Status.Render(fmt.Sprintf("%d selected · primary: %s", m.sel.Count(), primary))
}
