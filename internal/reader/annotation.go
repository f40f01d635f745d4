// Package reader holds the document-facing reading model: the annotation
// provider contract and the highlight grouping used by the highlights panel.
package reader

import "strings"

// PlaceholderText is used when neither the covered document text nor the
// annotation's own contents yield anything displayable.
const PlaceholderText = "Highlighted text"

// Rect is an annotation's bounds in page coordinate space. Grouping never
// inspects it; it is carried for providers and clients that do.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Annotation is a single page-scoped highlight as seen by the grouper.
// Identity is the ID, not the content: two annotations with identical text
// are still distinct.
type Annotation struct {
	ID        uint   `json:"id"`
	PageIndex int    `json:"page_index"`
	Text      string `json:"text"`     // covered document text, trimmed; may be empty
	Contents  string `json:"contents"` // free text stored on the annotation itself
	Color     string `json:"color,omitempty"`
	Bounds    Rect   `json:"bounds"`
}

// Provider exposes a document's highlight annotations to the reading model.
// Implementations must return annotations in stable in-page order from
// HighlightsOnPage, and RemoveAnnotation must be idempotent: removing an
// annotation that is no longer present reports false rather than failing.
type Provider interface {
	PageCount() int
	HighlightsOnPage(pageIndex int) []Annotation
	ResolvedText(a Annotation) string
	RemoveAnnotation(pageIndex int, a Annotation) bool
	MarkDirtyAndSave()
}

// ResolveText applies the display-text fallback chain: the covered document
// text if non-empty, then the annotation's own contents, then a fixed
// placeholder. The result is never empty.
func ResolveText(a Annotation) string {
	if t := strings.TrimSpace(a.Text); t != "" {
		return t
	}
	if t := strings.TrimSpace(a.Contents); t != "" {
		return t
	}
	return PlaceholderText
}
