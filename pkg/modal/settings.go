package modal

// SettingsTab names a page of the settings panel
type SettingsTab string

const (
	SettingsTheme   SettingsTab = "theme"
	SettingsGeneral SettingsTab = "general"
)

// Settings holds the settings panel state
type Settings struct {
	Open bool
	Tab  SettingsTab
}

// DefaultSettings returns a closed panel on the theme page
func DefaultSettings() Settings {
	return Settings{Tab: SettingsTheme}
}

func OpenSettings(s Settings) Settings {
	s.Open = true
	if s.Tab == "" {
		s.Tab = SettingsTheme
	}
	return s
}

// CloseSettings hides the panel and keeps the selected page
func CloseSettings(s Settings) Settings {
	s.Open = false
	return s
}

func ToggleSettings(s Settings) Settings {
	if s.Open {
		return CloseSettings(s)
	}
	return OpenSettings(s)
}

// SelectSettingsTab switches page. Unknown tabs are ignored.
func SelectSettingsTab(s Settings, tab SettingsTab) Settings {
	if tab != SettingsTheme && tab != SettingsGeneral {
		return s
	}
	s.Tab = tab
	return s
}
