package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/time/rate"

	"html-presenter/internal/engine"
	"html-presenter/internal/eventloop"
	"html-presenter/internal/frames"
	"html-presenter/internal/models"
)

var (
	ErrTransitionInProgress = errors.New("transition in progress")
	ErrThrottled            = errors.New("too many navigation requests")
	ErrUnknownCommand       = errors.New("unknown viewer command")
	ErrInvalidViewport      = errors.New("viewport must be positive")
)

// SurfaceHost is where surface documents live
type SurfaceHost interface {
	engine.Frames
	OnLoad(fn frames.LoadFunc)
	SetViewport(width, height float64)
	NotifyVisibility(id models.SurfaceID, visible bool)
}

// Publisher pushes messages to connected viewers
type Publisher interface {
	Publish(msgType string, data any)
}

// ViewerOptions configures the viewer
type ViewerOptions struct {
	Engine engine.Config
	// InputRate is the sustained navigation rate per second; 0 disables throttling
	InputRate  float64
	InputBurst int
}

// ViewerState is what viewers receive on every change
type ViewerState struct {
	Deck models.DeckState `json:"deck"`
	View engine.Snapshot  `json:"view"`
}

// ViewerService is the presentation input layer. It serializes every
// request onto the host loop and keeps users from navigating while a
// transition is running.
type ViewerService struct {
	loop      eventloop.Loop
	deck      *DeckService
	host      SurfaceHost
	publisher Publisher
	orch      *engine.Orchestrator
	limiter   *rate.Limiter

	mu       sync.RWMutex
	snapshot engine.Snapshot

	// host loop only
	pendingSync bool
}

// NewViewerService wires the orchestrator to the deck and the surface host
func NewViewerService(loop eventloop.Loop, deck *DeckService, host SurfaceHost, publisher Publisher, opts ViewerOptions) *ViewerService {
	limit := rate.Inf
	if opts.InputRate > 0 {
		limit = rate.Limit(opts.InputRate)
	}
	burst := opts.InputBurst
	if burst <= 0 {
		burst = 1
	}

	v := &ViewerService{
		loop:      loop,
		deck:      deck,
		host:      host,
		publisher: publisher,
		limiter:   rate.NewLimiter(limit, burst),
	}
	v.orch = engine.NewOrchestrator(loop, deck, host, v, opts.Engine)
	v.orch.OnTransition(func(models.TransitionRecord) {
		if v.pendingSync {
			v.pendingSync = false
			v.orch.NavigateTo(v.deck.ActiveIndex())
		}
	})
	host.OnLoad(v.orch.HandleLoad)
	deck.OnChange(func(models.DeckState) { v.SyncDeck() })
	return v
}

// Start shows the active slide
func (v *ViewerService) Start() {
	v.loop.Post(func() { v.orch.Start(v.deck.ActiveIndex()) })
}

// OnTransition registers fn for every finished transition
func (v *ViewerService) OnTransition(fn func(models.TransitionRecord)) {
	v.loop.Post(func() { v.orch.OnTransition(fn) })
}

// Render publishes a committed state
func (v *ViewerService) Render(s engine.Snapshot) {
	v.mu.Lock()
	v.snapshot = s
	v.mu.Unlock()

	if v.publisher != nil {
		v.publisher.Publish("state", ViewerState{Deck: v.deck.State(), View: s})
	}
}

// State returns the latest committed state
func (v *ViewerService) State() ViewerState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return ViewerState{Deck: v.deck.State(), View: v.snapshot}
}

// Navigate moves to index. It reports whether the index was valid.
func (v *ViewerService) Navigate(ctx context.Context, index int) (bool, error) {
	return v.step(ctx, func(int, int) int { return index })
}

// Next moves forward; it stops at the last slide
func (v *ViewerService) Next(ctx context.Context) (bool, error) {
	return v.step(ctx, func(active, _ int) int { return active + 1 })
}

// Prev moves back; it stops at the first slide
func (v *ViewerService) Prev(ctx context.Context) (bool, error) {
	return v.step(ctx, func(active, _ int) int { return active - 1 })
}

func (v *ViewerService) step(ctx context.Context, target func(active, count int) int) (bool, error) {
	if !v.limiter.Allow() {
		return false, ErrThrottled
	}
	var moved bool
	err := v.do(ctx, func() error {
		if v.orch.Transitioning() {
			return ErrTransitionInProgress
		}
		index := target(v.deck.ActiveIndex(), len(v.deck.Slides()))
		if !v.deck.SetActiveIndex(index) {
			return nil
		}
		moved = true
		v.orch.NavigateTo(index)
		return nil
	})
	return moved, err
}

// Show selects index without input throttling. A running transition is
// allowed to finish first.
func (v *ViewerService) Show(index int) bool {
	if !v.deck.SetActiveIndex(index) {
		return false
	}
	v.SyncDeck()
	return true
}

// SyncDeck re-presents the deck's active slide after a deck mutation
func (v *ViewerService) SyncDeck() {
	v.loop.Post(func() {
		if v.orch.Transitioning() {
			v.pendingSync = true
			return
		}
		v.orch.NavigateTo(v.deck.ActiveIndex())
	})
}

// Resize forwards a new window size to the surfaces
func (v *ViewerService) Resize(ctx context.Context, width, height float64) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidViewport
	}
	v.host.SetViewport(width, height)
	return v.do(ctx, func() error {
		v.orch.Resize(width, height)
		return nil
	})
}

// Visibility reports a surface becoming visible or hidden
func (v *ViewerService) Visibility(surface string, visible bool) error {
	id, err := models.ParseSurfaceID(surface)
	if err != nil {
		return err
	}
	v.host.NotifyVisibility(id, visible)
	return nil
}

// HandleCommand executes a command received from a viewer
func (v *ViewerService) HandleCommand(ctx context.Context, cmd ViewerCommand) error {
	var err error
	switch cmd.Type {
	case "navigate":
		_, err = v.Navigate(ctx, cmd.Index)
	case "next":
		_, err = v.Next(ctx)
	case "prev":
		_, err = v.Prev(ctx)
	case "resize":
		err = v.Resize(ctx, cmd.Width, cmd.Height)
	case "visibility":
		err = v.Visibility(cmd.Surface, cmd.Visible)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Type)
	}
	if err != nil && !errors.Is(err, ErrTransitionInProgress) && !errors.Is(err, ErrThrottled) {
		log.Printf("Viewer command %s failed: %v", cmd.Type, err)
	}
	return err
}

// do runs fn on the host loop and waits for it. fn is skipped once ctx
// has ended.
func (v *ViewerService) do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	v.loop.Post(func() {
		// the caller may have given up already
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		done <- fn()
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
