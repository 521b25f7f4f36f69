package tui

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Altagen/Velt/pkg/config"
	"github.com/Altagen/Velt/pkg/modal"
	"github.com/Altagen/Velt/pkg/theme"
)

const (
	delayStep = 250 // ms
	minDelay  = 250 // ms
)

// Close and reload confirmations

func (m *Model) handleCloseDialog(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "s", "enter":
		ctx, ws := m.ctx, m.ws
		return func() tea.Msg {
			return opResultMsg{err: ws.ConfirmClose(ctx, true)}
		}
	case "n", "d":
		if err := m.ws.ConfirmClose(m.ctx, false); err != nil {
			m.err = err.Error()
		}
	case "esc", "c":
		m.ws.CancelClose()
	}
	m.refresh()
	return nil
}

func (m *Model) handleReloadDialog(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "enter":
		return m.reloadCmd(m.snap.ReloadDialog.DocumentID, true)
	case "n", "esc":
		m.ws.CancelReload()
	}
	m.refresh()
	return nil
}

func (m *Model) renderCloseDialog() string {
	d := m.snap.CloseDialog
	body := []string{
		m.styles.DangerTitle.Render("Unsaved changes"),
		"",
		fmt.Sprintf("Do you want to save the changes you made to %s?", d.Filename),
	}
	if d.Summary != "" {
		body = append(body, m.styles.Muted.Render("Changes: "+d.Summary))
	}
	body = append(body, "",
		m.styles.HelpKey.Render("y")+m.styles.HelpValue.Render(" save")+" • "+
			m.styles.HelpKey.Render("n")+m.styles.HelpValue.Render(" don't save")+" • "+
			m.styles.HelpKey.Render("esc")+m.styles.HelpValue.Render(" cancel"))
	return m.centered(strings.Join(body, "\n"))
}

func (m *Model) renderReloadDialog() string {
	d := m.snap.ReloadDialog
	body := []string{
		m.styles.DangerTitle.Render("Reload from disk"),
		"",
		fmt.Sprintf("%s has unsaved changes. Reloading will discard them.", d.Filename),
		"",
		m.styles.HelpKey.Render("y") + m.styles.HelpValue.Render(" reload") + " • " +
			m.styles.HelpKey.Render("n") + m.styles.HelpValue.Render(" keep editing"),
	}
	return m.centered(strings.Join(body, "\n"))
}

// centered draws content in a bordered box in the middle of the screen
func (m *Model) centered(content string) string {
	width := min(70, max(m.width-4, 20))
	box := m.styles.Panel.Width(width).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// Find and replace

func (m *Model) openFind(replace bool) tea.Cmd {
	if replace {
		m.find = modal.OpenReplace(m.find)
	} else {
		m.find = modal.OpenFind(m.find)
	}
	m.replaceFocused = false
	m.findInput.SetValue(m.find.SearchText)
	m.findInput.CursorEnd()
	m.replaceInput.SetValue(m.find.ReplaceText)
	m.replaceInput.Blur()
	m.editor.Blur()
	m.research()
	m.refresh()
	return m.findInput.Focus()
}

func (m *Model) closeFind() tea.Cmd {
	m.find = modal.CloseFindReplace(m.find)
	m.findInput.Reset()
	m.replaceInput.Reset()
	m.findInput.Blur()
	m.replaceInput.Blur()
	m.refresh()
	return m.editor.Focus()
}

func (m *Model) handleFind(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return m.closeFind()
	case "tab":
		if !m.find.Expanded {
			return nil
		}
		m.replaceFocused = !m.replaceFocused
		if m.replaceFocused {
			m.findInput.Blur()
			return m.replaceInput.Focus()
		}
		m.replaceInput.Blur()
		return m.findInput.Focus()
	case "ctrl+h":
		m.find = modal.ToggleExpand(m.find)
		if !m.find.Expanded && m.replaceFocused {
			m.replaceFocused = false
			m.replaceInput.Blur()
			return m.findInput.Focus()
		}
		m.refresh()
		return nil
	case "alt+c":
		m.find = modal.ToggleCaseSensitive(m.find)
		m.research()
		return nil
	case "alt+r":
		m.find = modal.ToggleUseRegex(m.find)
		m.research()
		return nil
	case "alt+w":
		m.find = modal.ToggleWholeWord(m.find)
		m.research()
		return nil
	case "enter", "down", "f3":
		m.find = modal.NextMatch(m.find)
		m.jumpToMatch()
		return nil
	case "up", "shift+f3":
		m.find = modal.PrevMatch(m.find)
		m.jumpToMatch()
		return nil
	case "ctrl+r":
		m.replace(false)
		return nil
	case "ctrl+a":
		m.replace(true)
		return nil
	}

	var cmd tea.Cmd
	if m.replaceFocused {
		m.replaceInput, cmd = m.replaceInput.Update(msg)
		m.find = modal.UpdateReplaceText(m.find, m.replaceInput.Value())
		return cmd
	}
	m.findInput, cmd = m.findInput.Update(msg)
	if m.findInput.Value() != m.find.SearchText {
		m.find = modal.UpdateSearchText(m.find, m.findInput.Value())
		m.find = modal.UpdateMatchInfo(m.find, 0, 0)
		m.research()
		m.jumpToMatch()
	}
	return cmd
}

// research recounts matches in the active document
func (m *Model) research() {
	active, ok := m.snap.Active()
	if !ok {
		m.find = modal.UpdateMatchInfo(m.find, 0, 0)
		return
	}
	s, err := modal.Search(m.find, active.Content)
	m.find = s
	if err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
}

// jumpToMatch moves the cursor to the current match
func (m *Model) jumpToMatch() {
	active, ok := m.snap.Active()
	if !ok || active.IsPreview || m.find.MatchCount == 0 {
		return
	}
	matches, err := m.find.Matches(active.Content)
	if err != nil || m.find.CurrentMatchIndex >= len(matches) {
		return
	}
	start := matches[m.find.CurrentMatchIndex][0]
	text := active.Content[:start]
	lineStart := strings.LastIndexByte(text, '\n') + 1
	m.editor.MoveTo(strings.Count(text, "\n")+1, utf8.RuneCountInString(text[lineStart:]))
}

// replace substitutes the current match, or every match
func (m *Model) replace(all bool) {
	active, ok := m.snap.Active()
	if !ok || active.IsPreview || !m.find.Expanded {
		return
	}

	var (
		out string
		n   int
		err error
	)
	if all {
		out, n, err = m.find.ReplaceAll(active.Content)
	} else {
		var replaced bool
		out, replaced, err = m.find.ReplaceCurrent(active.Content)
		if replaced {
			n = 1
		}
	}
	if err != nil {
		m.err = err.Error()
		return
	}
	if n == 0 {
		return
	}

	m.ws.Edit(active.ID, out)
	m.refresh()
	m.research()
	m.status = fmt.Sprintf("Replaced %d occurrence(s)", n)
	m.jumpToMatch()
}

func (m *Model) renderFindBar() string {
	option := func(label string, on bool) string {
		if on {
			return m.styles.OptionOn.Render(label)
		}
		return m.styles.OptionOff.Render(label)
	}

	count := "No results"
	if m.find.MatchCount > 0 {
		count = fmt.Sprintf("%d of %d", m.find.CurrentMatchIndex+1, m.find.MatchCount)
	}

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.PanelTitle.Render("Find: "),
			m.findInput.View(), "  ",
			option("Aa", m.find.CaseSensitive),
			option(".*", m.find.UseRegex),
			option("ab", m.find.WholeWord), "  ",
			m.styles.Muted.Render(count),
		),
	}
	if m.find.Expanded {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.PanelTitle.Render("Replace: "),
			m.replaceInput.View(), "  ",
			m.styles.HelpKey.Render("Ctrl+R")+m.styles.HelpValue.Render(" replace")+" • "+
				m.styles.HelpKey.Render("Ctrl+A")+m.styles.HelpValue.Render(" all"),
		))
	}
	return m.styles.BorderActive.BorderTop(true).BorderBottom(false).
		BorderLeft(false).BorderRight(false).Width(m.width).
		Render(strings.Join(rows, "\n"))
}

// Go to line

func (m *Model) handleGoToLine(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.gotoLine = modal.CloseGoToLine(m.gotoLine)
		m.gotoInput.Blur()
		return m.editor.Focus()
	case "enter":
		s, line, ok := modal.ResolveGoToLine(m.gotoLine)
		m.gotoLine = s
		if !ok {
			return nil
		}
		m.gotoLine = modal.CloseGoToLine(m.gotoLine)
		m.gotoInput.Blur()
		m.editor.GotoLine(line)
		return m.editor.Focus()
	}

	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	if m.gotoInput.Value() != m.gotoLine.LineNumber {
		m.gotoLine = modal.UpdateLineNumber(m.gotoLine, m.gotoInput.Value())
	}
	return cmd
}

func (m *Model) renderGoToLine() string {
	line := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.PanelTitle.Render(fmt.Sprintf("Go to line (1-%d): ", m.gotoLine.TotalLines)),
		m.gotoInput.View(),
	)
	if m.gotoLine.ErrorMessage != "" {
		line += "  " + m.styles.Error.Render(m.gotoLine.ErrorMessage)
	}
	return m.styles.BorderActive.BorderTop(true).BorderBottom(false).
		BorderLeft(false).BorderRight(false).Width(m.width).Render(line)
}

// Settings

func (m *Model) openSettings() {
	m.settings = modal.OpenSettings(m.settings)
	m.editor.Blur()

	m.themeNames = []string{theme.NameDefaultDark, theme.NameDefaultLight}
	if m.themes != nil {
		if names, err := m.themes.List(); err == nil {
			for _, n := range names {
				if n != theme.NameCurrent && !slices.Contains(m.themeNames, n) {
					m.themeNames = append(m.themeNames, n)
				}
			}
		}
	}
	m.themeIndex = max(slices.Index(m.themeNames, m.styles.Theme.Name), 0)
}

func (m *Model) handleSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "f2":
		m.settings = modal.CloseSettings(m.settings)
		m.refresh()
		return m.editor.Focus()
	case "tab", "left", "right":
		next := modal.SettingsGeneral
		if m.settings.Tab == modal.SettingsGeneral {
			next = modal.SettingsTheme
		}
		m.settings = modal.SelectSettingsTab(m.settings, next)
		return nil
	}

	if m.settings.Tab == modal.SettingsTheme {
		switch msg.String() {
		case "up", "k":
			m.themeIndex = max(m.themeIndex-1, 0)
		case "down", "j":
			m.themeIndex = min(m.themeIndex+1, len(m.themeNames)-1)
		case "enter":
			m.selectTheme(m.themeNames[m.themeIndex])
		}
		return nil
	}

	opts := m.snap.AutoSave
	delay := int(opts.Delay.Milliseconds())
	switch msg.String() {
	case "a", "enter", " ":
		m.updateGeneral(!opts.Enabled, delay)
	case "+", "=":
		m.updateGeneral(opts.Enabled, delay+delayStep)
	case "-":
		m.updateGeneral(opts.Enabled, max(delay-delayStep, minDelay))
	}
	return nil
}

// selectTheme makes name the current theme and persists the choice
func (m *Model) selectTheme(name string) {
	var t theme.Theme
	switch {
	case m.themes != nil:
		loaded, err := m.themes.Load(name)
		if err != nil {
			m.err = err.Error()
			return
		}
		t = loaded
		if err := m.themes.SaveCurrent(t); err != nil {
			m.err = err.Error()
		}
	case name == theme.NameDefaultLight:
		t = theme.DefaultLight()
	default:
		t = theme.DefaultDark()
	}

	if m.cfg != nil {
		if err := m.cfg.Set("theme", name); err == nil {
			if err := m.cfg.Save(); err != nil {
				m.logger.Warn("Failed to save theme choice", "error", err)
			}
		}
	}

	m.styles = NewStyles(t)
	m.editor.SetStyles(m.styles)
	clear(m.previewCache)
	m.status = "Theme: " + name
}

// updateGeneral applies and persists the auto-save settings
func (m *Model) updateGeneral(enabled bool, delayMs int) {
	if m.cfg == nil {
		app := config.Defaults()
		app.AutoSave = enabled
		app.AutoSaveDelay = delayMs
		m.ws.ApplyConfig(app)
		m.refresh()
		return
	}

	if err := m.cfg.Set("autoSave", enabled); err != nil {
		m.err = err.Error()
		return
	}
	if err := m.cfg.Set("autoSaveDelay", delayMs); err != nil {
		m.err = err.Error()
		return
	}
	if err := m.cfg.Save(); err != nil {
		m.logger.Warn("Failed to save settings", "error", err)
	}
	m.ws.ApplyConfig(m.cfg.App())
	m.refresh()
}

func (m *Model) renderSettings() string {
	tab := func(label string, t modal.SettingsTab) string {
		if m.settings.Tab == t {
			return m.styles.TabActive.Render(label)
		}
		return m.styles.TabInactive.Render(label)
	}

	var body []string
	body = append(body,
		m.styles.PanelTitle.Render("Settings"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, tab("Theme", modal.SettingsTheme), " ", tab("General", modal.SettingsGeneral)),
		"",
	)

	if m.settings.Tab == modal.SettingsTheme {
		for i, name := range m.themeNames {
			line := "  " + name
			if i == m.themeIndex {
				line = m.styles.Selected.Render("❯ " + name)
			}
			if name == m.styles.Theme.Name {
				line += m.styles.Muted.Render(" (active)")
			}
			body = append(body, line)
		}
		body = append(body, "", m.styles.Muted.Render("↑/↓ choose • Enter apply • Tab general • Esc close"))
	} else {
		opts := m.snap.AutoSave
		state := "off"
		if opts.Enabled {
			state = "on"
		}
		body = append(body,
			fmt.Sprintf("Auto-save:  %s", m.styles.Selected.Render(state)),
			fmt.Sprintf("Delay:      %s", m.styles.Selected.Render(opts.Delay.String())),
			"",
			m.styles.Muted.Render("a toggle • +/- delay • Tab theme • Esc close"),
		)
	}
	return m.centered(strings.Join(body, "\n"))
}
