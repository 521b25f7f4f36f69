package modal

import (
	"fmt"
	"strconv"
	"strings"
)

// GoToLine holds the go-to-line prompt state
type GoToLine struct {
	Open         bool
	LineNumber   string // raw user input
	TotalLines   int
	ErrorMessage string
}

// OpenGoToLine shows the prompt for a document of totalLines lines
func OpenGoToLine(s GoToLine, totalLines int) GoToLine {
	s.Open = true
	s.TotalLines = totalLines
	s.LineNumber = ""
	s.ErrorMessage = ""
	return s
}

func CloseGoToLine(GoToLine) GoToLine {
	return GoToLine{}
}

// UpdateLineNumber stores the input and clears any previous error
func UpdateLineNumber(s GoToLine, input string) GoToLine {
	s.LineNumber = input
	s.ErrorMessage = ""
	return s
}

func SetGoToLineError(s GoToLine, message string) GoToLine {
	s.ErrorMessage = message
	return s
}

// ResolveGoToLine parses the input as a 1-based line number. On failure the
// returned state carries the error message and ok is false.
func ResolveGoToLine(s GoToLine) (GoToLine, int, bool) {
	line, err := strconv.Atoi(strings.TrimSpace(s.LineNumber))
	if err != nil {
		return SetGoToLineError(s, "Please enter a valid line number"), 0, false
	}
	if line < 1 || line > s.TotalLines {
		return SetGoToLineError(s, fmt.Sprintf("Line number must be between 1 and %d", s.TotalLines)), 0, false
	}
	return s, line, true
}

// CountLines returns the number of lines in text as an editor shows them
func CountLines(text string) int {
	return strings.Count(text, "\n") + 1
}
