package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"html-presenter/internal/models"
)

func slidesOf(ids ...string) []models.Slide {
	out := make([]models.Slide, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Slide{ID: id, Title: id, ContentRef: StaticRef(id + ".html")})
	}
	return out
}

func ids(slides []models.Slide) []string {
	out := make([]string, 0, len(slides))
	for _, s := range slides {
		out = append(out, s.ID)
	}
	return out
}

func TestDeckService_DeleteSlide(t *testing.T) {
	tests := []struct {
		name       string
		active     int
		deleteID   string
		wantActive int
	}{
		{name: "before active shifts down", active: 2, deleteID: "a", wantActive: 1},
		{name: "after active unchanged", active: 1, deleteID: "d", wantActive: 1},
		{name: "active keeps index", active: 1, deleteID: "b", wantActive: 1},
		{name: "active last selects new last", active: 3, deleteID: "d", wantActive: 2},
		{name: "first while active first", active: 0, deleteID: "a", wantActive: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDeckService(nil, slidesOf("a", "b", "c", "d"))
			require.True(t, d.SetActiveIndex(tt.active))

			removed, err := d.DeleteSlide(tt.deleteID)
			require.NoError(t, err)
			assert.Equal(t, tt.deleteID, removed.ID)
			assert.Equal(t, tt.wantActive, d.ActiveIndex())
			assert.Len(t, d.Slides(), 3)
		})
	}
}

func TestDeckService_DeleteLastSlide(t *testing.T) {
	d := NewDeckService(nil, slidesOf("a"))
	_, err := d.DeleteSlide("a")
	require.NoError(t, err)
	assert.Empty(t, d.Slides())
	assert.Equal(t, 0, d.ActiveIndex())

	_, err = d.DeleteSlide("a")
	assert.ErrorIs(t, err, ErrSlideNotFound)
}

func TestDeckService_DeleteReleasesContent(t *testing.T) {
	store := NewContentStore(t.TempDir())
	ref := store.Put([]byte("<html></html>"), "")
	d := NewDeckService(store, []models.Slide{{ID: "up", Title: "up", ContentRef: ref}})

	_, err := d.DeleteSlide("up")
	require.NoError(t, err)
	assert.Zero(t, store.Len())
	_, err = store.Resolve(ref)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestDeckService_AddSlides(t *testing.T) {
	d := NewDeckService(nil, slidesOf("a", "b"))

	var notified []models.DeckState
	d.OnChange(func(s models.DeckState) { notified = append(notified, s) })

	first, err := d.AddSlides(slidesOf("c", "d")...)
	require.NoError(t, err)
	assert.Equal(t, 2, first)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(d.Slides()))
	require.Len(t, notified, 1)

	_, err = d.AddSlides(slidesOf("a")...)
	assert.ErrorIs(t, err, ErrDuplicateSlide)

	_, err = d.DeleteSlide("c")
	require.NoError(t, err)
	_, err = d.AddSlides(slidesOf("c")...)
	assert.ErrorIs(t, err, ErrDuplicateSlide, "ids are never reused")
}

func TestDeckService_Reorder(t *testing.T) {
	d := NewDeckService(nil, slidesOf("a", "b", "c"))
	require.True(t, d.SetActiveIndex(1))

	require.NoError(t, d.Reorder([]string{"b", "c", "a"}))
	assert.Equal(t, []string{"b", "c", "a"}, ids(d.Slides()))
	assert.Equal(t, 0, d.ActiveIndex(), "active index follows the slide")

	assert.ErrorIs(t, d.Reorder([]string{"a", "b"}), ErrInvalidOrder)
	assert.ErrorIs(t, d.Reorder([]string{"a", "a", "b"}), ErrInvalidOrder)
	assert.ErrorIs(t, d.Reorder([]string{"a", "b", "x"}), ErrInvalidOrder)
	assert.Equal(t, []string{"b", "c", "a"}, ids(d.Slides()))
}

func TestDeckService_SetActiveIndex(t *testing.T) {
	d := NewDeckService(nil, slidesOf("a", "b"))
	assert.True(t, d.SetActiveIndex(1))
	assert.False(t, d.SetActiveIndex(2))
	assert.False(t, d.SetActiveIndex(-1))
	assert.Equal(t, 1, d.ActiveIndex())
}

func TestDeckService_RecreateByContentRef(t *testing.T) {
	d := NewDeckService(nil, slidesOf("a", "b", "c"))
	require.True(t, d.SetActiveIndex(1))
	var notified []models.DeckState
	d.OnChange(func(s models.DeckState) { notified = append(notified, s) })

	fresh := func(old models.Slide) models.Slide {
		return models.Slide{ID: old.ID + "-2", Title: "B2", ContentRef: RevisedRef("b.html")}
	}
	n, err := d.RecreateByContentRef(StaticRef("b.html"), fresh)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	slides := d.Slides()
	assert.Equal(t, []string{"a", "b-2", "c"}, ids(slides))
	assert.NotEqual(t, StaticRef("b.html"), slides[1].ContentRef)
	assert.Equal(t, StaticRef("b.html"), slides[1].ContentRef.Base())
	assert.Equal(t, 1, d.ActiveIndex())
	require.Len(t, notified, 1)

	_, err = d.AddSlides(models.Slide{ID: "b", ContentRef: StaticRef("x.html")})
	assert.ErrorIs(t, err, ErrDuplicateSlide, "replaced id is retired")

	n, err = d.RecreateByContentRef(StaticRef("zzz.html"), fresh)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, notified, 1)

	_, err = d.RecreateByContentRef(slides[1].ContentRef, func(old models.Slide) models.Slide { return old })
	assert.ErrorIs(t, err, ErrDuplicateSlide)
	assert.Equal(t, []string{"a", "b-2", "c"}, ids(d.Slides()))
}

func TestDeckService_DeleteByContentRef(t *testing.T) {
	d := NewDeckService(nil, slidesOf("a", "b"))
	assert.Equal(t, 1, d.DeleteByContentRef(StaticRef("a.html")))
	assert.Zero(t, d.DeleteByContentRef(StaticRef("a.html")))
	assert.Equal(t, []string{"b"}, ids(d.Slides()))
}
