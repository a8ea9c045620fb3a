package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the normal mode
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Home      key.Binding
	End       key.Binding
	Toggle    key.Binding
	Accept    key.Binding
	SelectAll key.Binding
	None      key.Binding
	Insert    key.Binding
	Delete    key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Search    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap(multi bool) keyMap {
	km := keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Home:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		End:       key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Accept:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "accept")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		None:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
		Insert:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert item")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete item")),
		MoveUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jump to")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q", "abort")),
	}
	if !multi {
		km.SelectAll.SetEnabled(false)
	}
	return km
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Accept, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Toggle, k.Accept, k.SelectAll, k.None},
		{k.Insert, k.Delete, k.MoveUp, k.MoveDown},
		{k.Search, k.Help, k.Quit},
	}
}
