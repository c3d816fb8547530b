package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"html-presenter/internal/eventloop"
	"html-presenter/internal/models"
	"html-presenter/internal/protocol"
)

type frameCall struct {
	op  string
	id  models.SurfaceID
	ref models.ContentRef
	gen uint64
	msg protocol.Message
}

type fakeFrames struct {
	calls []frameCall
}

func (f *fakeFrames) Load(id models.SurfaceID, ref models.ContentRef, gen uint64) {
	f.calls = append(f.calls, frameCall{op: "load", id: id, ref: ref, gen: gen})
}

func (f *fakeFrames) Clear(id models.SurfaceID) {
	f.calls = append(f.calls, frameCall{op: "clear", id: id})
}

func (f *fakeFrames) Send(id models.SurfaceID, msg protocol.Message) {
	f.calls = append(f.calls, frameCall{op: "send", id: id, msg: msg})
}

func (f *fakeFrames) sent(id models.SurfaceID, kind protocol.Kind) int {
	n := 0
	for _, c := range f.calls {
		if c.op == "send" && c.id == id && c.msg.Type == kind {
			n++
		}
	}
	return n
}

func (f *fakeFrames) count(op string, id models.SurfaceID) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op && c.id == id {
			n++
		}
	}
	return n
}

func (f *fakeFrames) reset() { f.calls = nil }

type testDeck struct {
	slides []models.Slide
}

func (d *testDeck) Slides() []models.Slide { return d.slides }

func deckOf(titles ...string) *testDeck {
	d := &testDeck{}
	for _, t := range titles {
		d.slides = append(d.slides, models.Slide{
			ID:         "slide-" + t,
			Title:      t,
			ContentRef: models.ContentRef("/slides/" + t + ".html"),
		})
	}
	return d
}

type harness struct {
	loop      *eventloop.Manual
	deck      *testDeck
	frames    *fakeFrames
	orch      *Orchestrator
	snapshots []Snapshot
	records   []models.TransitionRecord
}

func newHarness(t *testing.T, deck *testDeck, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{loop: eventloop.NewManual(), deck: deck, frames: &fakeFrames{}}
	cfg := DefaultConfig()
	cfg.Picker = FixedPicker(models.EffectSlideHorizontal)
	cfg.Clock = h.loop.Now
	if mutate != nil {
		mutate(&cfg)
	}
	h.orch = NewOrchestrator(h.loop, deck, h.frames, RendererFunc(func(s Snapshot) {
		h.snapshots = append(h.snapshots, s)
	}), cfg)
	h.orch.OnTransition(func(r models.TransitionRecord) {
		h.records = append(h.records, r)
	})
	return h
}

// completeTransition runs the reveal, swap and finalize stages
func (h *harness) completeTransition() {
	h.loop.Advance(h.orch.Config().Duration)
}

func assertOneActive(t *testing.T, p *SurfacePair) {
	t.Helper()
	states := p.States()
	active := 0
	for _, s := range states {
		if s.Active {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestLookup(t *testing.T) {
	for _, effect := range Effects() {
		for _, dir := range []models.Direction{models.DirectionNext, models.DirectionPrev} {
			poses, ok := Lookup(effect, dir)
			require.True(t, ok, "%s/%s", effect, dir)
			assert.Equal(t, models.IdentityPose, poses.EntryFinal, "%s/%s", effect, dir)
		}
	}

	poses, _ := Lookup(models.EffectSlideHorizontal, models.DirectionNext)
	assert.Equal(t, 100.0, poses.EntryStart.TranslateX)
	assert.Equal(t, -100.0, poses.Exit.TranslateX)

	poses, _ = Lookup(models.EffectSlideHorizontal, models.DirectionPrev)
	assert.Equal(t, -100.0, poses.EntryStart.TranslateX)
	assert.Equal(t, 100.0, poses.Exit.TranslateX)

	poses, _ = Lookup(models.EffectZoom, models.DirectionNext)
	assert.Equal(t, 1.5, poses.EntryStart.Scale)
	assert.Equal(t, 0.5, poses.Exit.Scale)
	assert.Zero(t, poses.Exit.Opacity)

	poses, _ = Lookup(models.EffectNone, models.DirectionPrev)
	assert.Equal(t, models.IdentityPose, poses.Exit)

	_, ok := Lookup(models.Effect("spin"), models.DirectionNext)
	assert.False(t, ok)
}

func TestPickers(t *testing.T) {
	assert.Len(t, Effects(), 8)

	pick := RandomPicker(rand.New(rand.NewSource(1)))
	seen := map[models.Effect]bool{}
	for i := 0; i < 500; i++ {
		e := pick()
		_, ok := Lookup(e, models.DirectionNext)
		require.True(t, ok)
		seen[e] = true
	}
	assert.Len(t, seen, 8)

	assert.Equal(t, models.EffectFade, FixedPicker(models.EffectFade)())
}

func TestLoadTracker(t *testing.T) {
	tr := NewLoadTracker()
	assert.False(t, tr.WasLoaded("/slides/a.html"))

	tr.MarkLoaded("/slides/a.html")
	tr.MarkLoaded("/slides/a.html")
	tr.MarkLoaded("")

	assert.True(t, tr.WasLoaded("/slides/a.html"))
	assert.Equal(t, 1, tr.Len())
}

func TestSurfacePair(t *testing.T) {
	p := NewSurfacePair()
	assertOneActive(t, p)
	assert.Equal(t, models.SurfaceA, p.Active().ID)
	assert.Equal(t, models.SurfaceB, p.Inactive().ID)

	gen := p.SetContent(models.SurfaceB, "/slides/b.html", "b", 1, false)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, models.Hidden(), p.Get(models.SurfaceB).Visual, "staging does not touch the visual state")

	p.Activate(models.SurfaceB)
	assertOneActive(t, p)
	assert.True(t, p.State(models.SurfaceB).Active)
	assert.False(t, p.State(models.SurfaceA).Active)

	p.ClearContent(models.SurfaceB)
	s := p.State(models.SurfaceB)
	assert.True(t, s.ContentRef.IsZero())
	assert.Equal(t, models.NoSlide, s.SlideIndex)
	assert.Equal(t, uint64(2), s.Generation)
}

func TestOrchestrator_Start(t *testing.T) {
	h := newHarness(t, deckOf("a", "b", "c"), nil)
	h.orch.Start(0)

	a := h.orch.Pair().Get(models.SurfaceA)
	b := h.orch.Pair().Get(models.SurfaceB)
	assert.Equal(t, models.ContentRef("/slides/a.html"), a.ContentRef)
	assert.Equal(t, models.Foreground(), a.Visual)
	assert.Equal(t, models.ContentRef("/slides/b.html"), b.ContentRef)
	assert.Equal(t, models.Hidden(), b.Visual)
	assert.Equal(t, 1, h.frames.count("load", models.SurfaceA))
	assert.Equal(t, 1, h.frames.count("load", models.SurfaceB))
	assertOneActive(t, h.orch.Pair())
}

func TestOrchestrator_NavigateForward(t *testing.T) {
	h := newHarness(t, deckOf("a", "b", "c"), nil)
	h.orch.Start(0)
	h.frames.reset()

	h.orch.NavigateTo(2)
	require.True(t, h.orch.Transitioning())
	snap := h.orch.Snapshot()
	require.NotNil(t, snap.Transition)
	assert.Equal(t, models.DirectionNext, snap.Transition.Direction)
	assert.Equal(t, models.EffectSlideHorizontal, snap.Transition.Effect)

	b := h.orch.Pair().Get(models.SurfaceB)
	assert.Equal(t, models.ContentRef("/slides/c.html"), b.ContentRef)
	assert.Zero(t, b.Visual.Opacity, "staged content stays hidden until revealed")
	assert.Equal(t, 1, h.frames.sent(models.SurfaceA, protocol.KindTransitionStart))

	// reveal
	require.True(t, h.loop.Frame())
	assert.Equal(t, 1.0, b.Visual.Opacity)
	assert.Equal(t, 100.0, b.Visual.Pose.TranslateX)
	assert.Equal(t, 10, b.Visual.ZIndex)
	assert.Zero(t, b.Visual.TransitionMs)

	// exit and entry land in the same frame
	require.True(t, h.loop.Frame())
	a := h.orch.Pair().Get(models.SurfaceA)
	assert.Equal(t, -100.0, a.Visual.Pose.TranslateX)
	assert.Equal(t, int64(800), a.Visual.TransitionMs)
	assert.Equal(t, models.IdentityPose, b.Visual.Pose)
	assert.Equal(t, 20, b.Visual.ZIndex)
	assert.Equal(t, int64(800), b.Visual.TransitionMs)
	assert.True(t, h.orch.Pair().IsActive(models.SurfaceA), "roles do not change before the duration elapses")

	h.loop.Advance(799 * time.Millisecond)
	assert.True(t, h.orch.Transitioning())

	h.loop.Advance(time.Millisecond)
	assert.False(t, h.orch.Transitioning())
	assertOneActive(t, h.orch.Pair())
	assert.True(t, h.orch.Pair().IsActive(models.SurfaceB))
	assert.Equal(t, 2, h.orch.PreviousIndex())
	assert.Equal(t, models.Foreground(), b.Visual)
	assert.Equal(t, models.Hidden(), a.Visual)
	assert.Equal(t, 1, h.frames.count("clear", models.SurfaceA))
	assert.Equal(t, 1, h.frames.sent(models.SurfaceB, protocol.KindTransitionEnd))

	// the vacated surface is warmed with the slide after 2, wrapping to 0
	assert.Equal(t, models.ContentRef("/slides/a.html"), a.ContentRef)
	assert.Equal(t, 0, a.SlideIndex)

	require.Len(t, h.records, 1)
	assert.Equal(t, 0, h.records[0].FromIndex)
	assert.Equal(t, 2, h.records[0].ToIndex)
	assert.Equal(t, "slide-c", h.records[0].SlideID)
	assert.Equal(t, 800*time.Millisecond, h.records[0].FinishedAt.Sub(h.records[0].StartedAt))
}

func TestOrchestrator_ClearsPreviousSurface(t *testing.T) {
	h := newHarness(t, deckOf("a", "b"), nil)
	h.orch.Start(0)
	genBefore := h.orch.Pair().Get(models.SurfaceA).Generation

	h.orch.NavigateTo(1)
	h.completeTransition()

	// cleared then restaged by the preload
	a := h.orch.Pair().Get(models.SurfaceA)
	assert.Equal(t, genBefore+2, a.Generation)
	assert.Equal(t, 1, h.frames.count("clear", models.SurfaceA))
	assert.Equal(t, 1, h.orch.PreviousIndex())
}

func TestOrchestrator_Direction(t *testing.T) {
	h := newHarness(t, deckOf("a", "b", "c"), nil)
	h.orch.Start(2)

	h.orch.NavigateTo(1)
	assert.Equal(t, models.DirectionPrev, h.orch.Snapshot().Transition.Direction)
	h.completeTransition()

	h.orch.NavigateTo(2)
	assert.Equal(t, models.DirectionNext, h.orch.Snapshot().Transition.Direction)
	h.completeTransition()

	require.Len(t, h.records, 2)
	assert.Equal(t, models.DirectionPrev, h.records[0].Direction)
	assert.Equal(t, models.DirectionNext, h.records[1].Direction)
}

func TestOrchestrator_ReusesStagedContent(t *testing.T) {
	h := newHarness(t, deckOf("a", "b", "c"), nil)
	h.orch.Start(0)
	b := h.orch.Pair().Get(models.SurfaceB)
	h.orch.HandleLoad(models.SurfaceB, b.Generation)
	h.frames.reset()

	h.orch.NavigateTo(1)
	assert.Zero(t, h.frames.count("load", models.SurfaceB), "preloaded surface is not reloaded")
	assert.True(t, b.Loaded)
}

func TestOrchestrator_SameSlideIsNoop(t *testing.T) {
	h := newHarness(t, deckOf("a", "b", "c"), nil)
	h.orch.Start(0)
	h.loop.Advance(time.Second)
	before := h.orch.Pair().States()
	h.frames.reset()

	h.orch.NavigateTo(0)

	assert.Equal(t, before, h.orch.Pair().States())
	assert.False(t, h.orch.Transitioning())
	assert.Zero(t, h.loop.PendingFrames())
	assert.Empty(t, h.frames.calls)
}

func TestOrchestrator_EmptyDeck(t *testing.T) {
	h := newHarness(t, &testDeck{}, nil)
	h.orch.Start(0)
	before := h.orch.Pair().States()

	for _, target := range []int{0, 3, -1} {
		h.orch.NavigateTo(target)
	}

	assert.Equal(t, before, h.orch.Pair().States())
	assert.Empty(t, h.frames.calls)
	require.NotEmpty(t, h.snapshots)
	assert.True(t, h.snapshots[len(h.snapshots)-1].Empty)
}

func TestOrchestrator_OutOfRange(t *testing.T) {
	h := newHarness(t, deckOf("a", "b"), nil)
	h.orch.Start(0)
	before := h.orch.Pair().States()

	h.orch.NavigateTo(2)
	h.orch.NavigateTo(-1)

	assert.Equal(t, before, h.orch.Pair().States())
	assert.False(t, h.orch.Transitioning())
	assert.Equal(t, 0, h.orch.PreviousIndex())
}

func TestOrchestrator_Animation(t *testing.T) {
	t.Run("loaded at finalize", func(t *testing.T) {
		h := newHarness(t, deckOf("a", "b"), nil)
		h.orch.Start(0)
		h.orch.HandleLoad(models.SurfaceB, h.orch.Pair().Get(models.SurfaceB).Generation)

		h.orch.NavigateTo(1)
		h.completeTransition()
		assert.Zero(t, h.frames.sent(models.SurfaceB, protocol.KindAnimationStart))

		h.loop.Advance(100 * time.Millisecond)
		assert.Equal(t, 1, h.frames.sent(models.SurfaceB, protocol.KindAnimationStart))
	})

	t.Run("late load on active surface", func(t *testing.T) {
		h := newHarness(t, deckOf("a", "b"), nil)
		h.orch.Start(0)

		h.orch.NavigateTo(1)
		h.completeTransition()
		h.loop.Advance(time.Second)
		assert.Zero(t, h.frames.sent(models.SurfaceB, protocol.KindAnimationStart))

		h.orch.HandleLoad(models.SurfaceB, h.orch.Pair().Get(models.SurfaceB).Generation)
		h.loop.Advance(100 * time.Millisecond)
		assert.Equal(t, 1, h.frames.sent(models.SurfaceB, protocol.KindAnimationStart))
	})

	t.Run("load during transition", func(t *testing.T) {
		h := newHarness(t, deckOf("a", "b"), nil)
		h.orch.Start(0)
		h.orch.NavigateTo(1)

		h.orch.HandleLoad(models.SurfaceB, h.orch.Pair().Get(models.SurfaceB).Generation)
		h.loop.Advance(500 * time.Millisecond)
		assert.Zero(t, h.frames.sent(models.SurfaceB, protocol.KindAnimationStart))

		h.loop.Advance(time.Second)
		assert.Equal(t, 1, h.frames.sent(models.SurfaceB, protocol.KindAnimationStart), "finalize requests it once loaded")
	})

	t.Run("load on idle surface", func(t *testing.T) {
		h := newHarness(t, deckOf("a", "b"), nil)
		h.orch.Start(0)
		h.orch.HandleLoad(models.SurfaceB, h.orch.Pair().Get(models.SurfaceB).Generation)
		h.loop.Advance(time.Second)
		assert.Zero(t, h.frames.sent(models.SurfaceB, protocol.KindAnimationStart))
	})
}

func TestOrchestrator_HandleLoad(t *testing.T) {
	h := newHarness(t, deckOf("a", "b"), nil)
	h.orch.Start(0)
	h.orch.Resize(1920, 1080)
	h.loop.Advance(time.Second)
	h.frames.reset()

	a := h.orch.Pair().Get(models.SurfaceA)
	h.orch.HandleLoad(models.SurfaceA, a.Generation-1)
	assert.False(t, a.Loaded, "stale generation ignored")
	assert.Empty(t, h.frames.calls)

	h.orch.HandleLoad(models.SurfaceA, a.Generation)
	assert.True(t, a.Loaded)
	assert.True(t, h.orch.Tracker().WasLoaded("/slides/a.html"))
	require.NotEmpty(t, h.frames.calls)
	assert.Equal(t, protocol.Resize(1920, 1080), h.frames.calls[0].msg)

	h.loop.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, h.frames.sent(models.SurfaceA, protocol.KindForceScale))
	h.loop.Advance(250 * time.Millisecond)
	assert.Equal(t, 3, h.frames.sent(models.SurfaceA, protocol.KindForceScale))
}

func TestOrchestrator_Resize(t *testing.T) {
	h := newHarness(t, deckOf("a"), nil)
	h.orch.Start(0)
	h.frames.reset()

	h.orch.Resize(800, 600)
	assert.Equal(t, 1, h.frames.sent(models.SurfaceA, protocol.KindResize))
	assert.Zero(t, h.frames.sent(models.SurfaceB, protocol.KindResize), "empty surface is skipped")
	assert.Zero(t, h.frames.sent(models.SurfaceA, protocol.KindForceScale))

	h.loop.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, h.frames.sent(models.SurfaceA, protocol.KindForceScale))

	w, hgt := h.orch.Viewport()
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 600.0, hgt)
}

func TestOrchestrator_SupersedePending(t *testing.T) {
	h := newHarness(t, deckOf("a", "b", "c"), func(cfg *Config) {
		cfg.SupersedePending = true
	})
	h.orch.Start(0)

	h.orch.NavigateTo(1)
	h.loop.Frame()
	h.orch.NavigateTo(2)

	require.Len(t, h.records, 1, "the first transition is finalized immediately")
	assert.Equal(t, 1, h.records[0].ToIndex)
	assert.True(t, h.orch.Transitioning())

	h.completeTransition()
	require.Len(t, h.records, 2)
	assert.Equal(t, 2, h.orch.PreviousIndex())
	assertOneActive(t, h.orch.Pair())
	assert.Equal(t, models.ContentRef("/slides/c.html"), h.orch.Pair().Active().ContentRef)

	h.loop.Advance(time.Second)
	assert.Zero(t, h.loop.PendingTimers())
}

func sequencePicker(effects ...models.Effect) Picker {
	i := 0
	return func() models.Effect {
		e := effects[i%len(effects)]
		i++
		return e
	}
}

func TestOrchestrator_ReplacedTransitionCommitsNoPoses(t *testing.T) {
	h := newHarness(t, deckOf("a", "b", "c"), func(cfg *Config) {
		cfg.Picker = sequencePicker(models.EffectSlideVertical, models.EffectSlideHorizontal)
	})
	h.orch.Start(2)

	h.orch.NavigateTo(1)
	h.orch.NavigateTo(0)
	h.snapshots = nil
	h.loop.Frame()
	h.loop.Frame()

	for _, s := range h.snapshots {
		for _, st := range s.Surfaces {
			assert.Zero(t, st.Visual.Pose.TranslateY, "vertical pose of the replaced transition was committed")
		}
	}
	require.Len(t, h.snapshots, 2, "one reveal and one swap")

	b := h.snapshots[0].Surfaces[models.SurfaceB].Visual
	assert.Equal(t, -100.0, b.Pose.TranslateX)
	assert.Equal(t, 10, b.ZIndex)

	a := h.snapshots[1].Surfaces[models.SurfaceA].Visual
	assert.Equal(t, 100.0, a.Pose.TranslateX)
	assert.Equal(t, models.IdentityPose, h.snapshots[1].Surfaces[models.SurfaceB].Visual.Pose)

	h.completeTransition()
	assert.Len(t, h.records, 2)
	assert.False(t, h.orch.Transitioning())
	assertOneActive(t, h.orch.Pair())
}

func TestOrchestrator_SteadyState(t *testing.T) {
	deck := deckOf("a", "b", "c", "d", "e")
	h := newHarness(t, deck, func(cfg *Config) {
		cfg.Picker = RandomPicker(rand.New(rand.NewSource(7)))
	})
	h.orch.Start(0)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		target := r.Intn(len(deck.slides)+2) - 1
		h.orch.NavigateTo(target)
		h.completeTransition()

		assertOneActive(t, h.orch.Pair())
		assert.False(t, h.orch.Transitioning())
		active := h.orch.Pair().Active()
		assert.Equal(t, models.Foreground(), active.Visual)
		assert.Equal(t, models.Hidden(), h.orch.Pair().Inactive().Visual)
		if target >= 0 && target < len(deck.slides) {
			assert.Equal(t, target, h.orch.PreviousIndex())
			assert.Equal(t, deck.slides[target].ContentRef, active.ContentRef)
			next := (target + 1) % len(deck.slides)
			assert.Equal(t, deck.slides[next].ContentRef, h.orch.Pair().Inactive().ContentRef)
		}
	}
}
