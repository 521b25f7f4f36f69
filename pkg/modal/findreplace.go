package modal

import (
	"fmt"
	"regexp"
	"strings"
)

// FindReplace holds the find/replace panel state
type FindReplace struct {
	Open              bool
	Expanded          bool // replace row visible
	SearchText        string
	ReplaceText       string
	MatchCount        int
	CurrentMatchIndex int
	CaseSensitive     bool
	UseRegex          bool
	WholeWord         bool
}

// OpenFind shows the panel without the replace row
func OpenFind(s FindReplace) FindReplace {
	s.Open = true
	s.Expanded = false
	return s
}

// OpenReplace shows the panel with the replace row
func OpenReplace(s FindReplace) FindReplace {
	s.Open = true
	s.Expanded = true
	return s
}

func ToggleExpand(s FindReplace) FindReplace {
	s.Expanded = !s.Expanded
	return s
}

// CloseFindReplace resets every field, including search options
func CloseFindReplace(FindReplace) FindReplace {
	return FindReplace{}
}

func UpdateSearchText(s FindReplace, text string) FindReplace {
	s.SearchText = text
	return s
}

func UpdateReplaceText(s FindReplace, text string) FindReplace {
	s.ReplaceText = text
	return s
}

// UpdateMatchInfo records the match count and the index of the current match
func UpdateMatchInfo(s FindReplace, count, current int) FindReplace {
	s.MatchCount = count
	s.CurrentMatchIndex = current
	return s
}

func ToggleCaseSensitive(s FindReplace) FindReplace {
	s.CaseSensitive = !s.CaseSensitive
	return s
}

func ToggleUseRegex(s FindReplace) FindReplace {
	s.UseRegex = !s.UseRegex
	return s
}

func ToggleWholeWord(s FindReplace) FindReplace {
	s.WholeWord = !s.WholeWord
	return s
}

// Pattern compiles the search options into a regular expression.
// It returns nil when the search text is empty.
func (s FindReplace) Pattern() (*regexp.Regexp, error) {
	if s.SearchText == "" {
		return nil, nil
	}
	expr := s.SearchText
	if !s.UseRegex {
		expr = regexp.QuoteMeta(expr)
	}
	if s.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if !s.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern: %w", err)
	}
	return re, nil
}

// Matches returns the submatch index ranges of every non-empty match in text
func (s FindReplace) Matches(text string) ([][]int, error) {
	re, err := s.Pattern()
	if err != nil || re == nil {
		return nil, err
	}
	var out [][]int
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		// zero-width regex matches are not useful in an editor
		if loc[0] != loc[1] {
			out = append(out, loc)
		}
	}
	return out, nil
}

// Search counts the matches in text and keeps the current index in range
func Search(s FindReplace, text string) (FindReplace, error) {
	matches, err := s.Matches(text)
	if err != nil {
		return UpdateMatchInfo(s, 0, 0), err
	}
	current := s.CurrentMatchIndex
	if current >= len(matches) || current < 0 {
		current = 0
	}
	return UpdateMatchInfo(s, len(matches), current), nil
}

// NextMatch advances the current match, wrapping around
func NextMatch(s FindReplace) FindReplace {
	if s.MatchCount == 0 {
		return s
	}
	s.CurrentMatchIndex = (s.CurrentMatchIndex + 1) % s.MatchCount
	return s
}

// PrevMatch moves back one match, wrapping around
func PrevMatch(s FindReplace) FindReplace {
	if s.MatchCount == 0 {
		return s
	}
	s.CurrentMatchIndex = (s.CurrentMatchIndex - 1 + s.MatchCount) % s.MatchCount
	return s
}

// ReplaceAll substitutes every match in text. With regex search the
// replacement may reference groups ($1); otherwise it is literal.
func (s FindReplace) ReplaceAll(text string) (string, int, error) {
	matches, err := s.Matches(text)
	if err != nil || len(matches) == 0 {
		return text, 0, err
	}
	re, _ := s.Pattern()

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		b.WriteString(text[last:loc[0]])
		b.WriteString(s.expand(re, text, loc))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String(), len(matches), nil
}

// ReplaceCurrent substitutes only the current match
func (s FindReplace) ReplaceCurrent(text string) (string, bool, error) {
	matches, err := s.Matches(text)
	if err != nil || len(matches) == 0 {
		return text, false, err
	}
	re, _ := s.Pattern()
	loc := matches[min(max(s.CurrentMatchIndex, 0), len(matches)-1)]
	return text[:loc[0]] + s.expand(re, text, loc) + text[loc[1]:], true, nil
}

func (s FindReplace) expand(re *regexp.Regexp, text string, loc []int) string {
	if !s.UseRegex {
		return s.ReplaceText
	}
	return string(re.ExpandString(nil, s.ReplaceText, text, loc))
}
