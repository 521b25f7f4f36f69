package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Terminal styles Markdown for display in a terminal
type Terminal struct {
	style string
	width int
	tr    *glamour.TermRenderer
}

// NewTerminal creates a terminal renderer. style is a glamour standard style
// name such as "dark" or "light"; width is the word wrap column.
func NewTerminal(style string, width int) (*Terminal, error) {
	if style == "" {
		style = "dark"
	}
	t := &Terminal{style: style}
	if err := t.SetWidth(width); err != nil {
		return nil, err
	}
	return t, nil
}

// SetWidth rebuilds the renderer for a new wrap width
func (t *Terminal) SetWidth(width int) error {
	if width < 20 {
		width = 20
	}
	if t.tr != nil && width == t.width {
		return nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create terminal renderer: %w", err)
	}
	t.tr = tr
	t.width = width
	return nil
}

// Render styles source. On failure the source is returned unchanged along
// with the error.
func (t *Terminal) Render(source string) (string, error) {
	out, err := t.tr.Render(source)
	if err != nil {
		return source, fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
