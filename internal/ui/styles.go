package ui

import (
	"github.com/charmbracelet/lipgloss"

	"listpick/internal/config"
)

// Styles contains all the lipgloss styles used in the UI
type Styles struct {
	Title       lipgloss.Style
	Cursor      lipgloss.Style
	Row         lipgloss.Style
	CursorRow   lipgloss.Style
	Selected    lipgloss.Style
	Index       lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Prompt      lipgloss.Style
	Scroll      lipgloss.Style
	Help        lipgloss.Style
}

// NewStyles creates styles using the colors from the UI settings
func NewStyles(settings config.UISettings) *Styles {
	cursorColor := settings.CursorColor
	if cursorColor == "" {
		cursorColor = "99"
	}
	selectedColor := settings.SelectedColor
	if selectedColor == "" {
		selectedColor = "78"
	}

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Cursor:    lipgloss.NewStyle().Foreground(lipgloss.Color(cursorColor)).Bold(true),
		Row:       lipgloss.NewStyle(),
		CursorRow: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color(selectedColor)),
		Index:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Help:        lipgloss.NewStyle().Faint(true),
	}
}
