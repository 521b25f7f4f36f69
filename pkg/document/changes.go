package document

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeSummary counts the lines that differ between the saved and the
// current content of a document
type ChangeSummary struct {
	LinesAdded   int `json:"lines_added"`
	LinesRemoved int `json:"lines_removed"`
}

// Empty reports whether the summary records no change
func (s ChangeSummary) Empty() bool {
	return s.LinesAdded == 0 && s.LinesRemoved == 0
}

func (s ChangeSummary) String() string {
	return fmt.Sprintf("+%d -%d", s.LinesAdded, s.LinesRemoved)
}

// Summarize diffs the document against its last saved content, line by line
func Summarize(doc Document) ChangeSummary {
	if !doc.Dirty {
		return ChangeSummary{}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(doc.OriginalContent, doc.Content)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var summary ChangeSummary
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			summary.LinesAdded += n
		case diffmatchpatch.DiffDelete:
			summary.LinesRemoved += n
		}
	}
	return summary
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
