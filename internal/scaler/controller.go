// Package scaler is the controller that runs inside every isolated surface.
// It knows nothing about the host or the other surface: it styles and
// scales its own document and replays entrance animations when told to,
// reacting only to protocol messages and local visibility changes.
package scaler

import (
	"bytes"
	"context"
	"io"
	"log"
	"math"
	"sync/atomic"

	"html-presenter/internal/document"
	"html-presenter/internal/eventloop"
	"html-presenter/internal/protocol"
)

// BaseStylesID marks the stylesheet the controller injects once per document
const BaseStylesID = "ppt-base-styles"

// Document is the part of the surface DOM the controller drives
type Document interface {
	InjectStylesheet(id, css string) bool
	ContentSize() (float64, float64, bool)
	Viewport() (float64, float64)
	SetViewport(width, height float64)
	ApplyContentTransform(scale float64) bool
	Reflow()
	AnimatedElements() []*document.Element
	AnimationGroups() []*document.Element
	Media() []*document.Media
	ReleaseHints() int
	Render(w io.Writer) error
}

// State is the controller lifecycle
type State int

const (
	Uninitialized State = iota
	Styled
	Scaled
)

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s State) String() string {
	switch s {
	case Styled:
		return "styled"
	case Scaled:
		return "scaled"
	default:
		return "uninitialized"
	}
}

// ComputeScale fits content into the viewport leaving a margin
func ComputeScale(viewportWidth, viewportHeight, contentWidth, contentHeight, margin float64) float64 {
	return math.Min(viewportWidth/contentWidth, viewportHeight/contentHeight) * margin
}

// Stats is a point-in-time view of the controller. Read it from the
// controller's own loop.
type Stats struct {
	State         State   `json:"state"`
	Passes        int     `json:"passes"`
	Collapsed     int     `json:"collapsed"`
	Attempts      int     `json:"attempts"`
	LastScale     float64 `json:"lastScale"`
	AnimationRuns int     `json:"animationRuns"`
	MediaStarted  int     `json:"mediaStarted"`
	MediaBlocked  int     `json:"mediaBlocked"`
}

// Controller owns one surface document
type Controller struct {
	name string
	loop eventloop.Loop
	doc  Document
	opts Options

	closed atomic.Bool

	state       State
	scaling     bool
	attempts    int
	resizeTimer eventloop.Timer
	retryTimer  eventloop.Timer
	cooldown    eventloop.Timer
	stats       Stats
}

// New creates a controller; call Start once the document is loaded
func New(name string, loop eventloop.Loop, doc Document, opts Options) *Controller {
	return &Controller{
		name: name,
		loop: loop,
		doc:  doc,
		opts: opts,
	}
}

// Start schedules initialization, the equivalent of content-ready firing
func (c *Controller) Start() {
	c.loop.AfterFunc(c.opts.InitialDelay, func() { c.initialize(0) })
}

// Serve feeds messages from the surface's port into its loop until the
// port closes or ctx ends
func (c *Controller) Serve(ctx context.Context, messages <-chan protocol.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.Deliver(msg)
		}
	}
}

// Deliver queues a message for the controller's loop
func (c *Controller) Deliver(msg protocol.Message) {
	c.loop.Post(func() { c.handle(msg) })
}

// NotifyVisibility reports a local visibility change of the surface
func (c *Controller) NotifyVisibility(visible bool) {
	c.loop.Post(func() {
		if !visible || c.closed.Load() {
			return
		}
		log.Printf("surface %s: became visible, rescaling", c.name)
		c.loop.AfterFunc(c.opts.VisibilityDelay, c.rescale)
	})
}

// Close tears the controller down; pending work and later messages are ignored
func (c *Controller) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.loop.Post(func() {
		for _, t := range []eventloop.Timer{c.resizeTimer, c.retryTimer, c.cooldown} {
			if t != nil {
				t.Stop()
			}
		}
	})
}

// Closed reports whether Close was called
func (c *Controller) Closed() bool {
	return c.closed.Load()
}

// Stats returns counters; call from the controller's loop
func (c *Controller) Stats() Stats {
	s := c.stats
	s.State = c.state
	s.Attempts = c.attempts
	return s
}

// Snapshot renders the live document from the controller's loop
func (c *Controller) Snapshot(ctx context.Context) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	c.loop.Post(func() {
		var buf bytes.Buffer
		err := c.doc.Render(&buf)
		done <- result{data: buf.Bytes(), err: err}
	})
	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Controller) handle(msg protocol.Message) {
	if c.closed.Load() {
		log.Printf("surface %s: torn down, ignoring %s", c.name, msg.Type)
		return
	}
	switch msg.Type {
	case protocol.KindResize:
		c.handleResize(msg.Width, msg.Height)
	case protocol.KindForceScale, protocol.KindTransitionEnd:
		c.rescale()
	case protocol.KindTransitionStart:
	case protocol.KindAnimationStart:
		c.startAnimations()
	default:
		log.Printf("surface %s: unknown message %q", c.name, msg.Type)
	}
}

func (c *Controller) initialize(attempt int) {
	if c.closed.Load() {
		return
	}
	c.doc.InjectStylesheet(BaseStylesID, baseStyles)
	if c.state == Uninitialized {
		c.state = Styled
	}

	w, h, ok := c.doc.ContentSize()
	if !ok || w <= 0 || h <= 0 {
		if attempt+1 < c.opts.MaxAttempts {
			c.loop.AfterFunc(c.opts.RetryInterval, func() { c.initialize(attempt + 1) })
			return
		}
		log.Printf("surface %s: content not ready after %d attempts, waiting for next trigger", c.name, c.opts.MaxAttempts)
		return
	}
	c.rescale()
}

func (c *Controller) handleResize(width, height float64) {
	if width < c.opts.MinViewport || height < c.opts.MinViewport {
		log.Printf("surface %s: ignoring resize %vx%v", c.name, width, height)
		return
	}
	c.doc.SetViewport(width, height)
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
	}
	c.resizeTimer = c.loop.AfterFunc(c.opts.ResizeDebounce, c.rescale)
}

// rescale is the entry point for external triggers: it restores the
// retry budget and asks for a pass
func (c *Controller) rescale() {
	c.attempts = 0
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.requestScale()
}

func (c *Controller) requestScale() {
	if c.closed.Load() {
		return
	}
	if c.state == Uninitialized {
		return
	}
	if c.scaling {
		c.stats.Collapsed++
		return
	}
	c.scaling = true
	c.loop.NextFrame(c.scalePass)
}

func (c *Controller) scalePass() {
	c.scaling = false
	if c.closed.Load() {
		return
	}
	if c.applyScale() {
		c.attempts = 0
		return
	}
	if c.attempts >= c.opts.MaxAttempts {
		log.Printf("surface %s: giving up scaling after %d attempts", c.name, c.attempts)
		return
	}
	c.attempts++
	c.retryTimer = c.loop.AfterFunc(c.opts.RetryInterval, c.requestScale)
}

func (c *Controller) applyScale() bool {
	w, h, ok := c.doc.ContentSize()
	if !ok {
		log.Printf("surface %s: content element missing, cannot scale", c.name)
		return false
	}
	if w < c.opts.MinContentWidth || h < c.opts.MinContentHeight {
		log.Printf("surface %s: content size %vx%v below threshold, retrying later", c.name, w, h)
		return false
	}

	vw, vh := c.doc.Viewport()
	if vw <= 0 || vh <= 0 {
		log.Printf("surface %s: viewport unknown", c.name)
		return false
	}

	scale := ComputeScale(vw, vh, w, h, c.opts.MarginFactor)
	if !c.doc.ApplyContentTransform(scale) {
		return false
	}
	c.doc.Reflow()
	c.state = Scaled
	c.stats.Passes++
	c.stats.LastScale = scale
	return true
}
