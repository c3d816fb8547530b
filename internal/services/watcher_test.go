package services

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlideWatcher_HandleEvent(t *testing.T) {
	dir := t.TempDir()
	writeSlide(t, dir, "a.html", "A")

	manifest, err := NewManifestStore(dir, nil, nil)
	require.NoError(t, err)
	deck := NewDeckService(nil, manifest.Slides())

	w, err := NewSlideWatcher(dir, manifest, deck)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	t.Run("create appends", func(t *testing.T) {
		writeSlide(t, dir, "b.html", "Bee")
		w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "b.html"), Op: fsnotify.Create})

		slides := deck.Slides()
		require.Len(t, slides, 2)
		assert.Equal(t, "b", slides[1].ID)
		assert.Equal(t, "Bee", slides[1].Title)
	})

	t.Run("duplicate create ignored", func(t *testing.T) {
		w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "b.html"), Op: fsnotify.Create})
		assert.Len(t, deck.Slides(), 2)
	})

	t.Run("non-slide ignored", func(t *testing.T) {
		w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Create})
		assert.Len(t, deck.Slides(), 2)
	})

	t.Run("write recreates the slide in place", func(t *testing.T) {
		before := deck.Slides()
		writeSlide(t, dir, "a.html", "Edited")
		w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "a.html"), Op: fsnotify.Write})

		slides := deck.Slides()
		require.Len(t, slides, 2)
		assert.Equal(t, before[1], slides[1], "other slides untouched")
		assert.NotEqual(t, before[0].ID, slides[0].ID)
		assert.Equal(t, "Edited", slides[0].Title)
		assert.NotEqual(t, before[0].ContentRef, slides[0].ContentRef)
		assert.Equal(t, StaticRef("a.html"), slides[0].ContentRef.Base())
	})

	t.Run("write of an unknown file is ignored", func(t *testing.T) {
		writeSlide(t, dir, "c.html", "Sea")
		w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "c.html"), Op: fsnotify.Write})
		assert.Len(t, deck.Slides(), 2)
	})

	t.Run("remove deletes", func(t *testing.T) {
		w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "a.html"), Op: fsnotify.Remove})
		assert.Equal(t, []string{"b"}, ids(deck.Slides()))
	})

	t.Run("recreated file gets a fresh id", func(t *testing.T) {
		w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "a.html"), Op: fsnotify.Create})
		slides := deck.Slides()
		require.Len(t, slides, 2)
		assert.NotEqual(t, "a", slides[1].ID)
		assert.Contains(t, slides[1].ID, "a-")
	})
}
