package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}

// renderHelpContent generates the full key reference shown in the pager
func renderHelpContent(km keyMap, multi bool) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("listpick keys"))
	help.WriteString("\n")

	sections := []string{"Navigation", "Selection", "Editing", "Other"}
	for i, group := range km.FullHelp() {
		help.WriteString(sectionStyle.Render(sections[i]))
		help.WriteString("\n")
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			help.WriteString(fmt.Sprintf("  %-10s %s\n", keyStyle.Render(h.Key), descStyle.Render(h.Desc)))
		}
		help.WriteString("\n")
	}

	mode := "single: selecting an item replaces the previous one"
	if multi {
		mode = "multiple: space adds or removes the item under the cursor"
	}
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).Render("  Mode " + mode))
	return help.String()
}

// HelpOps shows help in an external pager
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{
		program: program,
	}
}

// ShowHelpInPager shows help content using ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// Give ov time to exit before taking the terminal back
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(helpContent))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// showHelpPager returns a command that runs the pager
func (h *HelpOps) showHelpPager(content string) tea.Cmd {
	return func() tea.Msg {
		return helpPagerMsg{err: h.ShowHelpInPager(content)}
	}
}
