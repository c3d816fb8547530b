package engine

import "html-presenter/internal/models"

// LoadTracker remembers which content finished loading at least once in
// this session. It is a hint for staging only; the load signal of a
// surface stays authoritative. Owned by the host loop.
type LoadTracker struct {
	seen map[models.ContentRef]struct{}
}

func NewLoadTracker() *LoadTracker {
	return &LoadTracker{seen: make(map[models.ContentRef]struct{})}
}

func (t *LoadTracker) MarkLoaded(ref models.ContentRef) {
	if ref.IsZero() {
		return
	}
	t.seen[ref] = struct{}{}
}

func (t *LoadTracker) WasLoaded(ref models.ContentRef) bool {
	_, ok := t.seen[ref]
	return ok
}

func (t *LoadTracker) Len() int {
	return len(t.seen)
}
