package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("CleanDocument", func(t *testing.T) {
		doc := New("", "a\nb\n")
		summary := Summarize(doc)
		assert.True(t, summary.Empty())
	})

	t.Run("ReplacedLine", func(t *testing.T) {
		doc := New("", "a\nb\n")
		doc.Content = "a\nc\nd\n"
		doc.Dirty = true

		summary := Summarize(doc)
		assert.Equal(t, 2, summary.LinesAdded)
		assert.Equal(t, 1, summary.LinesRemoved)
		assert.Equal(t, "+2 -1", summary.String())
	})

	t.Run("DeletedEverything", func(t *testing.T) {
		doc := New("", "one\ntwo\nthree\n")
		doc.Content = ""
		doc.Dirty = true

		summary := Summarize(doc)
		assert.Equal(t, 0, summary.LinesAdded)
		assert.Equal(t, 3, summary.LinesRemoved)
	})
}
