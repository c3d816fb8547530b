package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"html-presenter/internal/models"
)

func TestContentStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.html"), []byte("<h1>intro</h1>"), 0644))
	store := NewContentStore(dir)

	t.Run("static", func(t *testing.T) {
		data, err := store.Resolve(StaticRef("intro.html"))
		require.NoError(t, err)
		assert.Equal(t, "<h1>intro</h1>", string(data))

		data, err = store.Resolve(RevisedRef("intro.html"))
		require.NoError(t, err)
		assert.Equal(t, "<h1>intro</h1>", string(data))

		_, err = store.Resolve(StaticRef("missing.html"))
		assert.ErrorIs(t, err, ErrContentNotFound)
	})

	t.Run("path traversal", func(t *testing.T) {
		for _, ref := range []models.ContentRef{"/slides/../secret", "/slides/a/../../x", "/other/intro.html", "/slides/"} {
			_, err := store.Resolve(ref)
			assert.ErrorIs(t, err, ErrInvalidContent, string(ref))
		}
	})

	t.Run("ephemeral", func(t *testing.T) {
		ref := store.Put([]byte("<p>up</p>"), "text/html")
		assert.True(t, ref.IsEphemeral())
		assert.True(t, strings.HasPrefix(string(ref), "blob:"))
		assert.Equal(t, 1, store.Len())

		data, err := store.Resolve(ref)
		require.NoError(t, err)
		assert.Equal(t, "<p>up</p>", string(data))
		assert.Equal(t, "text/html", store.MediaType(ref))

		assert.True(t, store.Release(ref))
		assert.False(t, store.Release(ref))
		assert.False(t, store.Release(StaticRef("intro.html")))
		assert.Zero(t, store.Len())
	})
}
