package services

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"html-presenter/internal/models"
)

var (
	ErrSlideNotFound  = errors.New("slide not found")
	ErrDuplicateSlide = errors.New("duplicate slide id")
	ErrInvalidOrder   = errors.New("order must list every slide exactly once")
)

// Releaser frees ephemeral content
type Releaser interface {
	Release(ref models.ContentRef) bool
}

// DeckService owns the ordered deck and the active index. Every mutation
// keeps the active index valid.
type DeckService struct {
	mu        sync.RWMutex
	slides    []models.Slide
	retired   map[string]bool
	active    int
	content   Releaser
	listeners []func(models.DeckState)
}

// NewDeckService creates a deck seeded with the default slides
func NewDeckService(content Releaser, initial []models.Slide) *DeckService {
	d := &DeckService{content: content, retired: make(map[string]bool)}
	seen := make(map[string]bool)
	for _, s := range initial {
		if seen[s.ID] {
			log.Printf("Skipping duplicate default slide: %s", s.ID)
			continue
		}
		seen[s.ID] = true
		d.slides = append(d.slides, s)
	}
	return d
}

// OnChange registers fn to be called after slides are added, reordered or deleted
func (d *DeckService) OnChange(fn func(models.DeckState)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Slides returns a copy of the deck
func (d *DeckService) Slides() []models.Slide {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Slide, len(d.slides))
	copy(out, d.slides)
	return out
}

// ActiveIndex returns the index of the slide being presented
func (d *DeckService) ActiveIndex() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// State returns slides and active index together
func (d *DeckService) State() models.DeckState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stateLocked()
}

func (d *DeckService) stateLocked() models.DeckState {
	slides := make([]models.Slide, len(d.slides))
	copy(slides, d.slides)
	return models.DeckState{Slides: slides, ActiveIndex: d.active}
}

// AddSlides appends slides and returns the index of the first one. Ids of
// deleted slides are never accepted again.
func (d *DeckService) AddSlides(slides ...models.Slide) (int, error) {
	d.mu.Lock()
	first := len(d.slides)
	ids := make(map[string]bool, len(d.slides)+len(slides))
	for _, s := range d.slides {
		ids[s.ID] = true
	}
	for _, s := range slides {
		if ids[s.ID] || d.retired[s.ID] {
			d.mu.Unlock()
			return 0, fmt.Errorf("%w: %s", ErrDuplicateSlide, s.ID)
		}
		ids[s.ID] = true
	}
	d.slides = append(d.slides, slides...)
	state, listeners := d.stateLocked(), d.listeners
	d.mu.Unlock()

	log.Printf("Added %d slides at index %d", len(slides), first)
	notify(listeners, state)
	return first, nil
}

// Reorder rearranges the deck by slide id. The active index follows the
// active slide to its new position.
func (d *DeckService) Reorder(ids []string) error {
	d.mu.Lock()
	if len(ids) != len(d.slides) {
		d.mu.Unlock()
		return ErrInvalidOrder
	}
	byID := make(map[string]models.Slide, len(d.slides))
	for _, s := range d.slides {
		byID[s.ID] = s
	}
	var activeID string
	if d.active < len(d.slides) {
		activeID = d.slides[d.active].ID
	}

	reordered := make([]models.Slide, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			d.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrInvalidOrder, id)
		}
		delete(byID, id)
		reordered = append(reordered, s)
	}

	d.slides = reordered
	for i, s := range reordered {
		if s.ID == activeID {
			d.active = i
			break
		}
	}
	state, listeners := d.stateLocked(), d.listeners
	d.mu.Unlock()

	notify(listeners, state)
	return nil
}

// DeleteSlide removes a slide and releases its ephemeral content. Deleting
// the active slide keeps the index so the following slide takes its place,
// or selects the new last slide when the active one was last.
func (d *DeckService) DeleteSlide(id string) (models.Slide, error) {
	d.mu.Lock()
	index := -1
	for i, s := range d.slides {
		if s.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		d.mu.Unlock()
		return models.Slide{}, fmt.Errorf("%w: %s", ErrSlideNotFound, id)
	}

	removed := d.slides[index]
	d.retired[id] = true
	d.slides = append(d.slides[:index:index], d.slides[index+1:]...)
	switch {
	case len(d.slides) == 0:
		d.active = 0
	case index == d.active:
		if d.active >= len(d.slides) {
			d.active = len(d.slides) - 1
		}
	case index < d.active:
		d.active--
	}
	state, listeners := d.stateLocked(), d.listeners
	d.mu.Unlock()

	if removed.ContentRef.IsEphemeral() && d.content != nil {
		d.content.Release(removed.ContentRef)
	}
	log.Printf("Deleted slide %s at index %d, active index %d", id, index, state.ActiveIndex)
	notify(listeners, state)
	return removed, nil
}

// DeleteByContentRef removes every slide showing the file behind ref
func (d *DeckService) DeleteByContentRef(ref models.ContentRef) int {
	var ids []string
	for _, s := range d.Slides() {
		if s.ContentRef.Base() == ref.Base() {
			ids = append(ids, s.ID)
		}
	}
	n := 0
	for _, id := range ids {
		if _, err := d.DeleteSlide(id); err == nil {
			n++
		}
	}
	return n
}

// HasContentRef reports whether a slide shows the file behind ref
func (d *DeckService) HasContentRef(ref models.ContentRef) bool {
	for _, s := range d.Slides() {
		if s.ContentRef.Base() == ref.Base() {
			return true
		}
	}
	return false
}

// RecreateByContentRef replaces every slide showing the file behind ref with
// the slide fresh returns for it. Replacements keep their position, the old
// ids are retired. Content never changes under an existing slide.
func (d *DeckService) RecreateByContentRef(ref models.ContentRef, fresh func(old models.Slide) models.Slide) (int, error) {
	d.mu.Lock()
	slides := make([]models.Slide, len(d.slides))
	copy(slides, d.slides)
	var released []models.ContentRef
	n := 0
	for i, s := range slides {
		if s.ContentRef.Base() != ref.Base() {
			continue
		}
		next := fresh(s)
		if next.ID == s.ID || d.retired[next.ID] || containsID(slides, next.ID) {
			d.mu.Unlock()
			return 0, fmt.Errorf("%w: %s", ErrDuplicateSlide, next.ID)
		}
		d.retired[s.ID] = true
		if s.ContentRef.IsEphemeral() && s.ContentRef != next.ContentRef {
			released = append(released, s.ContentRef)
		}
		slides[i] = next
		n++
	}
	if n == 0 {
		d.mu.Unlock()
		return 0, nil
	}
	d.slides = slides
	state, listeners := d.stateLocked(), d.listeners
	d.mu.Unlock()

	if d.content != nil {
		for _, r := range released {
			d.content.Release(r)
		}
	}
	log.Printf("Recreated %d slide(s) for %s", n, ref.Base())
	notify(listeners, state)
	return n, nil
}

func containsID(slides []models.Slide, id string) bool {
	for _, s := range slides {
		if s.ID == id {
			return true
		}
	}
	return false
}

// SetActiveIndex selects the slide to present; out-of-range is refused.
// Listeners are not notified, navigation is the caller's job.
func (d *DeckService) SetActiveIndex(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.slides) {
		return false
	}
	d.active = index
	return true
}

func notify(listeners []func(models.DeckState), state models.DeckState) {
	for _, fn := range listeners {
		fn(state)
	}
}
