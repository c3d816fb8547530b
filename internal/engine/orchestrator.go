// Package engine is the host side of the presentation: the two surface
// slots, the load tracker, the effect catalog and the transition state
// machine that drives them. Everything in here is owned by the host loop
// and must only be touched from its callbacks.
package engine

import (
	"log"
	"math/rand"
	"time"

	"html-presenter/internal/eventloop"
	"html-presenter/internal/models"
	"html-presenter/internal/protocol"
)

// SlideSource is the ordered deck the orchestrator navigates
type SlideSource interface {
	Slides() []models.Slide
}

// Frames loads content into surfaces and delivers protocol messages to them
type Frames interface {
	// Load starts loading ref into the surface. Completion is reported
	// back through Orchestrator.HandleLoad with the same generation.
	Load(id models.SurfaceID, ref models.ContentRef, generation uint64)
	// Clear tears the surface's document down
	Clear(id models.SurfaceID)
	// Send is best-effort; messages to a torn-down surface are dropped
	Send(id models.SurfaceID, msg protocol.Message)
}

// Renderer observes committed visual states
type Renderer interface {
	Render(Snapshot)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

// Snapshot is what the viewer draws
type Snapshot struct {
	// Empty is set when the deck has no slides and the placeholder shows
	Empty         bool                   `json:"empty"`
	Transitioning bool                   `json:"transitioning"`
	PreviousIndex int                    `json:"previousIndex"`
	SlideCount    int                    `json:"slideCount"`
	Transition    *models.Transition     `json:"transition,omitempty"`
	Surfaces      [2]models.SurfaceState `json:"surfaces"`
}

// ActiveSurface returns the state of the active surface
func (s Snapshot) ActiveSurface() models.SurfaceState {
	if s.Surfaces[models.SurfaceB].Active {
		return s.Surfaces[models.SurfaceB]
	}
	return s.Surfaces[models.SurfaceA]
}

// Config tunes the orchestrator
type Config struct {
	// Duration is the fixed length of every transition
	Duration time.Duration
	// AnimationDelay lets a freshly activated surface settle before its
	// animations are started
	AnimationDelay time.Duration
	// LoadRescaleDelays are the force-scale nudges sent after a load
	LoadRescaleDelays []time.Duration
	// ResizeRescaleDelay follows a viewport change with a force-scale
	ResizeRescaleDelay time.Duration
	// SupersedePending finalizes an in-flight transition as soon as the
	// next one starts instead of letting its timer fire late
	SupersedePending bool
	Picker           Picker
	Clock            func() time.Time
}

// DefaultConfig returns the standard timings with a random picker
func DefaultConfig() Config {
	return Config{
		Duration:           800 * time.Millisecond,
		AnimationDelay:     100 * time.Millisecond,
		LoadRescaleDelays:  []time.Duration{50 * time.Millisecond, 150 * time.Millisecond, 300 * time.Millisecond},
		ResizeRescaleDelay: 100 * time.Millisecond,
		Picker:             RandomPicker(rand.New(rand.NewSource(time.Now().UnixNano()))),
		Clock:              time.Now,
	}
}

type transition struct {
	seq       uint64
	desc      models.Transition
	poses     Poses
	from      models.SurfaceID
	to        models.SurfaceID
	fromIndex int
	target    int
	slideID   string
	startedAt time.Time
	finalized bool
}

// Orchestrator is the transition state machine
type Orchestrator struct {
	loop     eventloop.Loop
	deck     SlideSource
	frames   Frames
	renderer Renderer
	cfg      Config

	pair    *SurfacePair
	tracker *LoadTracker

	previousIndex int
	transitioning bool
	current       *transition
	finalizeTimer eventloop.Timer
	seq           uint64
	empty         bool

	viewportWidth  float64
	viewportHeight float64

	onTransition []func(models.TransitionRecord)
}

// NewOrchestrator wires an orchestrator. Nothing is loaded until Start.
func NewOrchestrator(loop eventloop.Loop, deck SlideSource, frames Frames, renderer Renderer, cfg Config) *Orchestrator {
	def := DefaultConfig()
	if cfg.Duration <= 0 {
		cfg.Duration = def.Duration
	}
	if cfg.AnimationDelay < 0 {
		cfg.AnimationDelay = def.AnimationDelay
	}
	if cfg.LoadRescaleDelays == nil {
		cfg.LoadRescaleDelays = def.LoadRescaleDelays
	}
	if cfg.ResizeRescaleDelay <= 0 {
		cfg.ResizeRescaleDelay = def.ResizeRescaleDelay
	}
	if cfg.Picker == nil {
		cfg.Picker = def.Picker
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Orchestrator{
		loop:     loop,
		deck:     deck,
		frames:   frames,
		renderer: renderer,
		cfg:      cfg,
		pair:     NewSurfacePair(),
		tracker:  NewLoadTracker(),
	}
}

// OnTransition registers fn to receive every finished transition
func (o *Orchestrator) OnTransition(fn func(models.TransitionRecord)) {
	o.onTransition = append(o.onTransition, fn)
}

func (o *Orchestrator) Pair() *SurfacePair    { return o.pair }
func (o *Orchestrator) Tracker() *LoadTracker { return o.tracker }
func (o *Orchestrator) PreviousIndex() int    { return o.previousIndex }
func (o *Orchestrator) Transitioning() bool   { return o.transitioning }
func (o *Orchestrator) Config() Config        { return o.cfg }
func (o *Orchestrator) Viewport() (float64, float64) {
	return o.viewportWidth, o.viewportHeight
}

// Snapshot captures the current state for observers
func (o *Orchestrator) Snapshot() Snapshot {
	s := Snapshot{
		Empty:         o.empty,
		Transitioning: o.transitioning,
		PreviousIndex: o.previousIndex,
		SlideCount:    len(o.deck.Slides()),
		Surfaces:      o.pair.States(),
	}
	if o.transitioning && o.current != nil {
		desc := o.current.desc
		s.Transition = &desc
	}
	return s
}

// Start puts the slide at index into the active surface without a
// transition and warms the idle surface with its successor
func (o *Orchestrator) Start(index int) {
	slides := o.deck.Slides()
	if len(slides) == 0 {
		o.empty = true
		o.render()
		return
	}
	o.empty = false
	if index < 0 || index >= len(slides) {
		index = 0
	}
	active := o.pair.ActiveID()
	o.enterStaging(active, slides[index], index)
	o.pair.SetVisual(active, models.Foreground())
	o.previousIndex = index
	o.preload(active.Other(), index)
	o.render()
}

// NavigateTo moves the presentation to the slide at target. Out-of-range
// targets are ignored. Callers are expected to hold off while a
// transition is running.
func (o *Orchestrator) NavigateTo(target int) {
	slides := o.deck.Slides()
	if len(slides) == 0 {
		if !o.empty {
			o.empty = true
		}
		o.render()
		return
	}
	if o.empty {
		o.empty = false
		o.render()
	}
	if target < 0 || target >= len(slides) {
		return
	}
	if o.transitioning && o.cfg.SupersedePending {
		o.supersede()
	}

	slide := slides[target]
	active := o.pair.Active()
	if !active.ContentRef.IsZero() && active.ContentRef == slide.ContentRef {
		o.pair.SetSlideIndex(active.ID, target)
		o.previousIndex = target
		return
	}

	direction := models.DirectionPrev
	if target > o.previousIndex {
		direction = models.DirectionNext
	}

	inactive := o.pair.Inactive()
	if inactive.ContentRef != slide.ContentRef {
		o.enterStaging(inactive.ID, slide, target)
	} else {
		o.pair.SetSlideIndex(inactive.ID, target)
	}

	effect := o.cfg.Picker()
	poses, ok := Lookup(effect, direction)
	if !ok {
		log.Printf("engine: unknown effect %q, falling back to %q", effect, models.EffectNone)
		effect = models.EffectNone
		poses, _ = Lookup(effect, direction)
	}

	o.seq++
	t := &transition{
		seq:       o.seq,
		desc:      models.Transition{Effect: effect, Direction: direction},
		poses:     poses,
		from:      active.ID,
		to:        inactive.ID,
		fromIndex: o.previousIndex,
		target:    target,
		slideID:   slide.ID,
		startedAt: o.cfg.Clock(),
	}
	o.current = t
	o.transitioning = true

	o.frames.Send(t.from, protocol.TransitionStart())
	o.frames.Send(t.to, protocol.TransitionStart())
	o.render()

	o.loop.NextFrame(func() { o.reveal(t) })
	o.finalizeTimer = o.loop.AfterFunc(o.cfg.Duration, func() { o.finalize(t) })
}

// enterStaging loads slide into a surface invisibly
func (o *Orchestrator) enterStaging(id models.SurfaceID, slide models.Slide, index int) {
	loaded := o.tracker.WasLoaded(slide.ContentRef)
	gen := o.pair.SetContent(id, slide.ContentRef, slide.Title, index, loaded)
	if !o.pair.IsActive(id) {
		o.pair.SetVisual(id, models.Hidden())
	}
	o.frames.Load(id, slide.ContentRef, gen)
}

// reveal shows the incoming surface at its off-stage pose, still behind
// the active one
func (o *Orchestrator) reveal(t *transition) {
	if t.finalized || o.current != t {
		return
	}
	o.pair.SetVisual(t.to, models.VisualState{Pose: t.poses.EntryStart, Opacity: 1, ZIndex: 10})
	o.render()
	o.loop.NextFrame(func() { o.swap(t) })
}

// swap writes the exit and entry poses in one commit
func (o *Orchestrator) swap(t *transition) {
	if t.finalized || o.current != t {
		return
	}
	o.pair.SetVisual(t.from, models.VisualState{Pose: t.poses.Exit, Opacity: 1, ZIndex: 10}.WithTransition(o.cfg.Duration))
	o.pair.SetVisual(t.to, models.VisualState{Pose: t.poses.EntryFinal, Opacity: 1, ZIndex: 20}.WithTransition(o.cfg.Duration))
	o.render()
}

// finalize hands the active role to the incoming surface and recycles the
// outgoing one
func (o *Orchestrator) finalize(t *transition) {
	if t.finalized {
		return
	}
	t.finalized = true

	o.pair.Activate(t.to)
	o.pair.ClearContent(t.from)
	o.pair.SetVisual(t.from, models.Hidden())
	o.frames.Clear(t.from)
	o.pair.SetVisual(t.to, models.Foreground())

	if o.current == t {
		o.current = nil
		o.transitioning = false
		o.finalizeTimer = nil
	}
	o.previousIndex = t.target

	o.frames.Send(t.to, protocol.TransitionEnd())
	if o.pair.Get(t.to).Loaded {
		o.requestAnimation(t.to)
	}
	o.preload(t.from, t.target)
	o.render()

	record := models.TransitionRecord{
		Effect:     t.desc.Effect,
		Direction:  t.desc.Direction,
		FromIndex:  t.fromIndex,
		ToIndex:    t.target,
		SlideID:    t.slideID,
		StartedAt:  t.startedAt,
		FinishedAt: o.cfg.Clock(),
	}
	for _, fn := range o.onTransition {
		fn(record)
	}
}

// supersede finalizes the running transition right away
func (o *Orchestrator) supersede() {
	t := o.current
	if t == nil {
		return
	}
	if o.finalizeTimer != nil {
		o.finalizeTimer.Stop()
	}
	o.finalize(t)
}

// preload warms the idle surface with the slide after target
func (o *Orchestrator) preload(idle models.SurfaceID, target int) {
	slides := o.deck.Slides()
	if len(slides) == 0 {
		return
	}
	next := (target + 1) % len(slides)
	if next == target {
		return
	}
	o.enterStaging(idle, slides[next], next)
}

// requestAnimation asks the surface to start its animations once it has
// settled, provided it still holds the same content and is still active
func (o *Orchestrator) requestAnimation(id models.SurfaceID) {
	gen := o.pair.Get(id).Generation
	o.loop.AfterFunc(o.cfg.AnimationDelay, func() {
		s := o.pair.Get(id)
		if s.Generation != gen || !o.pair.IsActive(id) || s.ContentRef.IsZero() {
			return
		}
		o.frames.Send(id, protocol.AnimationStart())
	})
}

// HandleLoad is the load-complete signal of a surface. Signals from a
// previous generation of the surface are ignored.
func (o *Orchestrator) HandleLoad(id models.SurfaceID, generation uint64) {
	s := o.pair.Get(id)
	if s.Generation != generation || s.ContentRef.IsZero() {
		log.Printf("engine: ignoring stale load surface=%s generation=%d current=%d", id, generation, s.Generation)
		return
	}
	o.tracker.MarkLoaded(s.ContentRef)
	o.pair.MarkLoaded(id)

	if o.viewportWidth > 0 && o.viewportHeight > 0 {
		o.frames.Send(id, protocol.Resize(o.viewportWidth, o.viewportHeight))
	}
	for _, d := range o.cfg.LoadRescaleDelays {
		o.loop.AfterFunc(d, func() {
			if o.pair.Get(id).Generation != generation {
				return
			}
			o.frames.Send(id, protocol.ForceScale())
		})
	}

	if o.pair.IsActive(id) && !o.transitioning {
		o.requestAnimation(id)
	}
	o.render()
}

// Resize records the viewport and forwards it to both surfaces
func (o *Orchestrator) Resize(width, height float64) {
	o.viewportWidth, o.viewportHeight = width, height
	msg := protocol.Resize(width, height)
	for _, id := range []models.SurfaceID{models.SurfaceA, models.SurfaceB} {
		if o.pair.Get(id).ContentRef.IsZero() {
			continue
		}
		o.frames.Send(id, msg)
	}
	o.loop.AfterFunc(o.cfg.ResizeRescaleDelay, func() {
		for _, id := range []models.SurfaceID{models.SurfaceA, models.SurfaceB} {
			if o.pair.Get(id).ContentRef.IsZero() {
				continue
			}
			o.frames.Send(id, protocol.ForceScale())
		}
	})
}

func (o *Orchestrator) render() {
	if o.renderer == nil {
		return
	}
	o.renderer.Render(o.Snapshot())
}
