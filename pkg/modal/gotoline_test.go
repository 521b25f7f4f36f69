package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoToLine(t *testing.T) {
	s := OpenGoToLine(GoToLine{LineNumber: "stale", ErrorMessage: "stale"}, 10)
	if !s.Open || s.TotalLines != 10 || s.LineNumber != "" || s.ErrorMessage != "" {
		t.Fatalf("unexpected state after open: %+v", s)
	}

	s = SetGoToLineError(s, "bad")
	s = UpdateLineNumber(s, "4")
	if s.ErrorMessage != "" {
		t.Fatalf("typing should clear the error")
	}

	if got := CloseGoToLine(s); got != (GoToLine{}) {
		t.Fatalf("expected reset state, got %+v", got)
	}
}

func TestResolveGoToLine(t *testing.T) {
	tests := []struct {
		input   string
		line    int
		ok      bool
		message string
	}{
		{"1", 1, true, ""},
		{" 10 ", 10, true, ""},
		{"0", 0, false, "Line number must be between 1 and 10"},
		{"11", 0, false, "Line number must be between 1 and 10"},
		{"-3", 0, false, "Line number must be between 1 and 10"},
		{"abc", 0, false, "Please enter a valid line number"},
		{"", 0, false, "Please enter a valid line number"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := UpdateLineNumber(OpenGoToLine(GoToLine{}, 10), tt.input)
			got, line, ok := ResolveGoToLine(s)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.message, got.ErrorMessage)
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 1, CountLines(""))
	assert.Equal(t, 2, CountLines("a\nb"))
	assert.Equal(t, 3, CountLines("a\nb\n"))
}
