package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Altagen/Velt/pkg/theme"
)

// Styles contains all the lipgloss styles for the TUI
type Styles struct {
	Theme theme.Theme

	// Base styles
	App       lipgloss.Style
	Footer    lipgloss.Style
	StatusBar lipgloss.Style
	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style

	// Tabs
	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabDirty    lipgloss.Style

	// Editor
	Text        lipgloss.Style
	CursorLine  lipgloss.Style
	LineNumber  lipgloss.Style
	CursorLineN lipgloss.Style
	Toolbar     lipgloss.Style

	// Panels and dialogs
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	Selected    lipgloss.Style
	OptionOn    lipgloss.Style
	OptionOff   lipgloss.Style
	DangerTitle lipgloss.Style

	// Border styles
	BorderNormal lipgloss.Style
	BorderActive lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t theme.Theme) *Styles {
	ui := t.UI
	c := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }

	s := &Styles{Theme: t}

	s.App = lipgloss.NewStyle().
		Foreground(c(t.Editor.Foreground)).
		Background(c(t.Editor.Background))

	s.Footer = lipgloss.NewStyle().
		Foreground(c(ui.TextSecondary)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(c(ui.Border)).
		Padding(0, 1)

	s.StatusBar = lipgloss.NewStyle().
		Foreground(c(ui.TextActiveColor)).
		Background(c(ui.MenuBar)).
		Padding(0, 1)

	s.HelpKey = lipgloss.NewStyle().Foreground(c(ui.TextSecondary))
	s.HelpValue = lipgloss.NewStyle().Foreground(c(ui.TextColor))
	s.Muted = lipgloss.NewStyle().Foreground(c(ui.TextSecondary))

	s.Error = lipgloss.NewStyle().
		Foreground(c(ui.AccentDanger)).
		Bold(true)

	s.Success = lipgloss.NewStyle().
		Foreground(c(ui.AccentPrimary)).
		Bold(true)

	// Tabs
	s.TabBar = lipgloss.NewStyle().Background(c(ui.TabBar))

	s.TabActive = lipgloss.NewStyle().
		Foreground(c(ui.TextActiveColor)).
		Background(c(ui.TabActive)).
		Bold(true).
		Padding(0, 1)

	s.TabInactive = lipgloss.NewStyle().
		Foreground(c(ui.TextSecondary)).
		Background(c(ui.TabInactive)).
		Padding(0, 1)

	s.TabDirty = lipgloss.NewStyle().Foreground(c(ui.DirtyIndicator))

	// Editor
	s.Text = lipgloss.NewStyle().Foreground(c(t.Editor.Foreground))
	s.CursorLine = lipgloss.NewStyle().Background(c(t.Editor.LineHighlight))

	s.LineNumber = lipgloss.NewStyle().
		Foreground(c(t.Gutter.Foreground)).
		Background(c(t.Gutter.Background))

	s.CursorLineN = lipgloss.NewStyle().
		Foreground(c(ui.TextActiveColor)).
		Background(c(t.Gutter.Background))

	s.Toolbar = lipgloss.NewStyle().
		Foreground(c(ui.IconColor)).
		Background(c(ui.SidebarActive)).
		Padding(0, 1)

	// Panels and dialogs
	s.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(c(ui.Accent)).
		Padding(1, 2)

	s.PanelTitle = lipgloss.NewStyle().
		Foreground(c(ui.Accent)).
		Bold(true)

	s.Selected = lipgloss.NewStyle().
		Foreground(c(ui.Accent)).
		Bold(true)

	s.OptionOn = lipgloss.NewStyle().
		Foreground(c(ui.TextActiveColor)).
		Background(c(ui.AccentPrimary)).
		Padding(0, 1)

	s.OptionOff = lipgloss.NewStyle().
		Foreground(c(ui.TextSecondary)).
		Padding(0, 1)

	s.DangerTitle = lipgloss.NewStyle().
		Foreground(c(ui.AccentDanger)).
		Bold(true)

	// Border styles
	s.BorderNormal = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(c(ui.Border))

	s.BorderActive = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(c(ui.SidebarActiveBorder))

	return s
}

// glamourStyle picks the preview style matching the theme background
func glamourStyle(t theme.Theme) string {
	if t.IsDark() {
		return "dark"
	}
	return "light"
}
