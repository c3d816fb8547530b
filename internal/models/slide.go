package models

import "strings"

// ContentRef is an opaque reference to renderable slide content.
// Static references point into the slides directory ("/slides/intro.html"),
// ephemeral ones into the in-memory content store ("blob:<uuid>").
type ContentRef string

// EphemeralPrefix marks content backed by the in-memory store
const EphemeralPrefix = "blob:"

// IsEphemeral reports whether the reference must be released when its slide goes away
func (r ContentRef) IsEphemeral() bool {
	return strings.HasPrefix(string(r), EphemeralPrefix)
}

// Base drops the revision query of a static reference. Two references with
// the same base show the same file.
func (r ContentRef) Base() ContentRef {
	if i := strings.IndexByte(string(r), '?'); i >= 0 {
		return r[:i]
	}
	return r
}

// IsZero reports whether the reference is empty
func (r ContentRef) IsZero() bool {
	return r == ""
}

// Slide represents an entry in the ordered deck
type Slide struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	ContentRef ContentRef `json:"contentRef"`
}

// DeckState represents the deck as seen by clients
type DeckState struct {
	Slides      []Slide `json:"slides"`
	ActiveIndex int     `json:"activeIndex"`
}

// ManifestEntry represents one slide of the static default set
type ManifestEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Manifest represents the root structure of slides.json
type Manifest struct {
	Slides []ManifestEntry `json:"slides"`
}
