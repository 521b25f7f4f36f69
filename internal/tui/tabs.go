package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Altagen/Velt/pkg/document"
	"github.com/Altagen/Velt/pkg/pane"
)

const (
	maxTabTitle = 24
	dirtyMark   = "●"
)

// tabTitle returns the display name of doc cut to maxTabTitle cells
func tabTitle(doc document.Document) string {
	return runewidth.Truncate(doc.Title(), maxTabTitle, "…")
}

// renderTabs draws the tab strip of one pane, clipped to width
func renderTabs(styles *Styles, docs map[string]document.Document, p pane.Pane, width int) string {
	var tabs []string
	for _, id := range p.DocumentIDs {
		doc, ok := docs[id]
		if !ok {
			continue
		}
		label := tabTitle(doc)
		if doc.Dirty {
			label += " " + styles.TabDirty.Render(dirtyMark)
		}
		if id == p.ActiveID {
			tabs = append(tabs, styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(label))
		}
	}
	if len(tabs) == 0 {
		tabs = append(tabs, styles.TabInactive.Render("no documents"))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if lipgloss.Width(line) > width {
		line = truncateANSI(line, width)
	}
	return styles.TabBar.Width(width).Render(line)
}

// truncateANSI shortens a styled line to width cells
func truncateANSI(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// clipLines cuts plain text to a width x height block
func clipLines(text string, width, height int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		line = strings.ReplaceAll(line, "\t", "    ")
		lines[i] = runewidth.Truncate(line, width, "")
	}
	return strings.Join(lines, "\n")
}
