package document

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultEncoding is the encoding label given to new documents
const DefaultEncoding = "utf-8"

// LanguageMarkdown is the language tag that marks a document as Markdown
const LanguageMarkdown = "markdown"

// UntitledName is shown for documents that have no backing file
const UntitledName = "Untitled"

var markdownExtensions = map[string]bool{
	"md":       true,
	"markdown": true,
	"mdx":      true,
}

// Document represents an open document (a tab)
type Document struct {
	ID              string `json:"id"`
	Path            string `json:"path,omitempty"`
	Content         string `json:"content"`
	OriginalContent string `json:"original_content"`
	Dirty           bool   `json:"dirty"`
	Encoding        string `json:"encoding"`
	Language        string `json:"language,omitempty"`

	// IsPreview marks a generated, read-only rendering of SourceID.
	IsPreview bool   `json:"is_preview,omitempty"`
	SourceID  string `json:"source_id,omitempty"`
}

// New creates a clean document with a fresh identifier.
// An empty path means the document is untitled.
func New(path, content string) Document {
	return Document{
		ID:              uuid.NewString(),
		Path:            path,
		Content:         content,
		OriginalContent: content,
		Encoding:        DefaultEncoding,
	}
}

// NewPreview creates the preview companion of source. The preview starts empty;
// its content is filled in by the renderer.
func NewPreview(source Document) Document {
	doc := New("", "")
	doc.IsPreview = true
	doc.SourceID = source.ID
	doc.Encoding = source.Encoding
	doc.Language = LanguageMarkdown
	return doc
}

// Title returns the display name used for tabs
func (d Document) Title() string {
	if d.IsPreview {
		return "Preview"
	}
	if d.Path == "" {
		return UntitledName
	}
	return filepath.Base(d.Path)
}

// IsMarkdown reports whether the document is eligible for a rendered preview,
// either by language tag or by file extension.
func (d Document) IsMarkdown() bool {
	if d.Language == LanguageMarkdown {
		return true
	}
	if d.Path == "" {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Path)), ".")
	return markdownExtensions[ext]
}

// Untitled reports whether the document has no backing file
func (d Document) Untitled() bool {
	return d.Path == ""
}
