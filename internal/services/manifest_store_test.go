package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"html-presenter/internal/models"
)

func writeSlide(t *testing.T, dir, rel, title string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	body := "<html><body></body></html>"
	if title != "" {
		body = "<html><head><title>" + title + "</title></head><body></body></html>"
	}
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
}

func TestManifestStore_Discover(t *testing.T) {
	dir := t.TempDir()
	writeSlide(t, dir, "welcome.html", "Welcome")
	writeSlide(t, dir, "intro.html", "")
	writeSlide(t, dir, "extra/demo.html", "Demo")
	writeSlide(t, dir, "drafts/wip.html", "WIP")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	store, err := NewManifestStore(dir, nil, []string{"drafts/**"})
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, models.ManifestEntry{ID: "extra-demo", Title: "Demo", Path: "extra/demo.html"}, entries[0])
	assert.Equal(t, models.ManifestEntry{ID: "intro", Title: "intro", Path: "intro.html"}, entries[1])
	assert.Equal(t, "Welcome", entries[2].Title)

	slides := store.Slides()
	assert.Equal(t, models.ContentRef("/slides/extra/demo.html"), slides[0].ContentRef)
}

func TestManifestStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	writeSlide(t, dir, "b.html", "B")
	writeSlide(t, dir, "a.html", "A")

	store, err := NewManifestStore(dir, nil, nil)
	require.NoError(t, err)

	entries := store.Entries()
	entries[0], entries[1] = entries[1], entries[0]
	require.NoError(t, store.SetEntries(entries))
	assert.FileExists(t, store.Path())
	assert.NoFileExists(t, store.Path()+".tmp")

	reloaded, err := NewManifestStore(dir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(reloaded.Slides()))
}

func TestManifestStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("{not json"), 0644))

	store, err := NewManifestStore(dir, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, store.Entries())
}

func TestManifestStore_MissingDir(t *testing.T) {
	store, err := NewManifestStore(filepath.Join(t.TempDir(), "nope"), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, store.Entries())
}

func TestManifestStore_Matches(t *testing.T) {
	store, err := NewManifestStore(t.TempDir(), []string{"**/*.html"}, []string{"_*"})
	require.NoError(t, err)

	assert.True(t, store.Matches("a.html"))
	assert.True(t, store.Matches("deep/dir/a.html"))
	assert.False(t, store.Matches("_hidden.html"))
	assert.False(t, store.Matches("a.md"))
	assert.False(t, store.Matches(ManifestFile))
}
