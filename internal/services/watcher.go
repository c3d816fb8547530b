package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"html-presenter/internal/models"
)

// SlideWatcher keeps the deck in step with the slides directory: new
// slide files are appended, removed ones are deleted from the deck and
// edited ones are recreated in place
type SlideWatcher struct {
	watcher  *fsnotify.Watcher
	manifest *ManifestStore
	deck     *DeckService
	dir      string
}

// NewSlideWatcher watches slidesDir
func NewSlideWatcher(slidesDir string, manifest *ManifestStore, deck *DeckService) (*SlideWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(slidesDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", slidesDir, err)
	}
	return &SlideWatcher{watcher: w, manifest: manifest, deck: deck, dir: slidesDir}, nil
}

// Run processes events until ctx ends
func (w *SlideWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	log.Printf("Watching slides directory: %s", w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Slide watcher error: %v", err)
		}
	}
}

func (w *SlideWatcher) handleEvent(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.dir, ev.Name)
	if err != nil || !w.manifest.Matches(rel) {
		return
	}
	ref := StaticRef(rel)

	switch {
	case ev.Has(fsnotify.Create):
		if w.deck.HasContentRef(ref) {
			return
		}
		entry := w.manifest.EntryFor(rel)
		slide := models.Slide{ID: entry.ID, Title: entry.Title, ContentRef: ref}
		_, err := w.deck.AddSlides(slide)
		if errors.Is(err, ErrDuplicateSlide) {
			slide.ID = entry.ID + "-" + uuid.NewString()[:8]
			_, err = w.deck.AddSlides(slide)
		}
		if err != nil {
			log.Printf("Failed to add watched slide %s: %v", rel, err)
			return
		}
		log.Printf("Slide file added: %s", rel)
	case ev.Has(fsnotify.Write):
		entry := w.manifest.EntryFor(rel)
		n, err := w.deck.RecreateByContentRef(ref, func(models.Slide) models.Slide {
			return models.Slide{
				ID:         entry.ID + "-" + uuid.NewString()[:8],
				Title:      entry.Title,
				ContentRef: RevisedRef(rel),
			}
		})
		if err != nil {
			log.Printf("Failed to recreate edited slide %s: %v", rel, err)
			return
		}
		if n > 0 {
			log.Printf("Slide file changed: %s (%d slides)", rel, n)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if n := w.deck.DeleteByContentRef(ref); n > 0 {
			log.Printf("Slide file removed: %s (%d slides)", rel, n)
		}
	}
}

// Close stops watching
func (w *SlideWatcher) Close() error {
	return w.watcher.Close()
}
