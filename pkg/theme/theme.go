package theme

// Editor colours the text area
type Editor struct {
	Background     string `json:"background"`
	Foreground     string `json:"foreground"`
	LineHighlight  string `json:"lineHighlight"`
	Selection      string `json:"selection"`
	Cursor         string `json:"cursor"`
	SelectionMatch string `json:"selectionMatch"`
}

// Gutter colours the line number column
type Gutter struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Border     string `json:"border"`
}

// UI colours the chrome around the editor
type UI struct {
	MenuBar             string `json:"menuBar"`
	TabBar              string `json:"tabBar"`
	TabActive           string `json:"tabActive"`
	TabInactive         string `json:"tabInactive"`
	TextColor           string `json:"textColor"`
	TextSecondary       string `json:"textSecondary"`
	TextHoverColor      string `json:"textHoverColor"`
	TextActiveColor     string `json:"textActiveColor"`
	Background          string `json:"background"`
	Border              string `json:"border"`
	Accent              string `json:"accent"`
	AccentHover         string `json:"accentHover"`
	AccentPrimary       string `json:"accentPrimary"`
	AccentPrimaryHover  string `json:"accentPrimaryHover"`
	AccentDanger        string `json:"accentDanger"`
	AccentDangerHover   string `json:"accentDangerHover"`
	IconColor           string `json:"iconColor"`
	IconActiveColor     string `json:"iconActiveColor"`
	DirtyIndicator      string `json:"dirtyIndicator"`
	SidebarActive       string `json:"sidebarActive"`
	SidebarActiveBorder string `json:"sidebarActiveBorder"`
}

// Theme is a named colour scheme stored as JSON
type Theme struct {
	Name   string            `json:"name"`
	Editor Editor            `json:"editor"`
	Gutter Gutter            `json:"gutter"`
	UI     UI                `json:"ui"`
	Icons  map[string]string `json:"icons,omitempty"`
}

// IsDark guesses whether the theme has a dark background
func (t Theme) IsDark() bool {
	r, g, b, ok := parseHex(t.Editor.Background)
	if !ok {
		return true
	}
	// perceived luminance
	return (299*r+587*g+114*b)/1000 < 128
}

func parseHex(s string) (int, int, int, bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	var rgb [3]int
	for i := range rgb {
		hi, ok1 := hexDigit(s[1+2*i])
		lo, ok2 := hexDigit(s[2+2*i])
		if !ok1 || !ok2 {
			return 0, 0, 0, false
		}
		rgb[i] = hi<<4 | lo
	}
	return rgb[0], rgb[1], rgb[2], true
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// DefaultDark returns the built-in dark theme
func DefaultDark() Theme {
	return Theme{
		Name: "Default Dark",
		Editor: Editor{
			Background:     "#1e1e1e",
			Foreground:     "#d4d4d4",
			LineHighlight:  "#2d2d30",
			Selection:      "rgba(58, 110, 165, 0.3)",
			Cursor:         "#ffffff",
			SelectionMatch: "rgba(100, 200, 100, 0.3)",
		},
		Gutter: Gutter{Background: "#1e1e1e", Foreground: "#858585", Border: "#3e3e42"},
		UI: UI{
			MenuBar:             "#2d2d30",
			TabBar:              "#2d2d30",
			TabActive:           "#1e1e1e",
			TabInactive:         "#2d2d30",
			TextColor:           "#cccccc",
			TextSecondary:       "#858585",
			TextHoverColor:      "#ffffff",
			TextActiveColor:     "#ffffff",
			Background:          "#252526",
			Border:              "#3e3e42",
			Accent:              "#4a9eff",
			AccentHover:         "#6eb4ff",
			AccentPrimary:       "#00d4aa",
			AccentPrimaryHover:  "#00ffcc",
			AccentDanger:        "#f48771",
			AccentDangerHover:   "#ff9b87",
			IconColor:           "#858585",
			IconActiveColor:     "#ffd700",
			DirtyIndicator:      "#4ec9b0",
			SidebarActive:       "#1e1e1e",
			SidebarActiveBorder: "#00d4aa",
		},
		Icons: map[string]string{
			"file": "#64B5F6", "save": "#81C784", "reload": "#4DD0E1",
			"search": "#64B5F6", "replace": "#FFD54F", "warning": "#FFB74D",
			"encoding": "#F06292", "language": "#4DB6AC",
		},
	}
}

// DefaultLight returns the built-in light theme
func DefaultLight() Theme {
	return Theme{
		Name: "Default Light",
		Editor: Editor{
			Background:     "#ffffff",
			Foreground:     "#000000",
			LineHighlight:  "#f0f0f0",
			Selection:      "rgba(173, 214, 255, 0.4)",
			Cursor:         "#000000",
			SelectionMatch: "rgba(180, 215, 180, 0.4)",
		},
		Gutter: Gutter{Background: "#f5f5f5", Foreground: "#6e6e6e", Border: "#e0e0e0"},
		UI: UI{
			MenuBar:             "#f3f3f3",
			TabBar:              "#f3f3f3",
			TabActive:           "#ffffff",
			TabInactive:         "#ececec",
			TextColor:           "#333333",
			TextSecondary:       "#6e6e6e",
			TextHoverColor:      "#000000",
			TextActiveColor:     "#000000",
			Background:          "#f5f5f5",
			Border:              "#e0e0e0",
			Accent:              "#0066cc",
			AccentHover:         "#0052a3",
			AccentPrimary:       "#00a884",
			AccentPrimaryHover:  "#008f6f",
			AccentDanger:        "#d73a2e",
			AccentDangerHover:   "#b32d24",
			IconColor:           "#6e6e6e",
			IconActiveColor:     "#cc9900",
			DirtyIndicator:      "#00a884",
			SidebarActive:       "#ffffff",
			SidebarActiveBorder: "#0066cc",
		},
		Icons: map[string]string{
			"file": "#1976D2", "save": "#388E3C", "reload": "#0097A7",
			"search": "#1976D2", "replace": "#FBC02D", "warning": "#F57C00",
			"encoding": "#D81B60", "language": "#00897B",
		},
	}
}
