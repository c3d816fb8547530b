// Package frames hosts the isolated surface documents. Every load boots a
// fresh document with its own loop, controller and message port, so a
// surface never shares memory with the host or with the other surface.
package frames

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"html-presenter/internal/document"
	"html-presenter/internal/eventloop"
	"html-presenter/internal/models"
	"html-presenter/internal/protocol"
	"html-presenter/internal/scaler"
)

// ViewerStylesID marks the stylesheet the host adds to every document
const ViewerStylesID = "ppt-viewer-styles"

const viewerStyles = `html, body { margin: 0; padding: 0; width: 100%; height: 100%; overflow: hidden; background: transparent; }
body { position: relative; }`

// ErrSurfaceEmpty is returned for a surface with no live document
var ErrSurfaceEmpty = errors.New("surface has no document")

// Resolver turns a content reference into document bytes
type Resolver interface {
	Resolve(ref models.ContentRef) ([]byte, error)
}

// LoadFunc receives load-complete signals on the host loop
type LoadFunc func(id models.SurfaceID, generation uint64)

// Options configures a Host
type Options struct {
	Scaler         scaler.Options
	ViewportWidth  float64
	ViewportHeight float64
	Autoplay       bool
	FrameInterval  time.Duration
	PortBuffer     int
}

type slot struct {
	ref        models.ContentRef
	generation uint64
	cancel     context.CancelFunc
	loop       *eventloop.Runner
	controller *scaler.Controller
	port       *protocol.Port
}

func (s *slot) teardown() {
	if s.controller != nil {
		s.controller.Close()
	}
	if s.port != nil {
		s.port.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// Host owns the two surface slots
type Host struct {
	ctx      context.Context
	loop     eventloop.Loop
	resolver Resolver
	opts     Options

	mu       sync.Mutex
	slots    [2]*slot
	onLoad   LoadFunc
	viewport [2]float64
}

// NewHost creates a host whose surfaces live until ctx ends. Load
// signals are posted onto loop.
func NewHost(ctx context.Context, loop eventloop.Loop, resolver Resolver, opts Options) *Host {
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		opts.ViewportWidth, opts.ViewportHeight = 1920, 1080
	}
	return &Host{
		ctx:      ctx,
		loop:     loop,
		resolver: resolver,
		opts:     opts,
		viewport: [2]float64{opts.ViewportWidth, opts.ViewportHeight},
	}
}

// OnLoad sets the load-complete callback
func (h *Host) OnLoad(fn LoadFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLoad = fn
}

// SetViewport is the window size new documents are created with
func (h *Host) SetViewport(width, height float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewport = [2]float64{width, height}
}

// Load replaces whatever the surface holds with ref. The document is
// resolved and booted off the host loop; completion is posted back.
func (h *Host) Load(id models.SurfaceID, ref models.ContentRef, generation uint64) {
	h.mu.Lock()
	if old := h.slots[id]; old != nil {
		old.teardown()
	}
	s := &slot{ref: ref, generation: generation}
	h.slots[id] = s
	viewport := h.viewport
	h.mu.Unlock()

	go h.boot(id, s, viewport)
}

func (h *Host) boot(id models.SurfaceID, s *slot, viewport [2]float64) {
	data, err := h.resolver.Resolve(s.ref)
	if err != nil {
		log.Printf("surface %s: failed to resolve %s: %v", id, s.ref, err)
		return
	}
	doc, err := document.ParseBytes(data,
		document.WithViewport(viewport[0], viewport[1]),
		document.WithAutoplay(h.opts.Autoplay))
	if err != nil {
		log.Printf("surface %s: failed to parse %s: %v", id, s.ref, err)
		return
	}
	doc.InjectStylesheet(ViewerStylesID, viewerStyles)

	ctx, cancel := context.WithCancel(h.ctx)
	loop := eventloop.NewRunner(h.opts.FrameInterval)
	port := protocol.NewPort(h.opts.PortBuffer)
	controller := scaler.New(fmt.Sprintf("%s#%d", id, s.generation), loop, doc, h.opts.Scaler)

	h.mu.Lock()
	if h.slots[id] != s {
		h.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.loop = loop
	s.port = port
	s.controller = controller
	onLoad := h.onLoad
	h.mu.Unlock()

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("surface %s: loop stopped: %v", id, err)
		}
	}()
	go controller.Serve(ctx, port.Messages())
	controller.Start()

	if onLoad != nil {
		generation := s.generation
		h.loop.Post(func() { onLoad(id, generation) })
	}
}

// Clear tears the surface down
func (h *Host) Clear(id models.SurfaceID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s := h.slots[id]; s != nil {
		s.teardown()
		h.slots[id] = nil
	}
}

// Send delivers msg to the surface if it still has a live document
func (h *Host) Send(id models.SurfaceID, msg protocol.Message) {
	var port *protocol.Port
	h.mu.Lock()
	if s := h.slots[id]; s != nil {
		port = s.port
	}
	h.mu.Unlock()
	if port == nil {
		return
	}
	if !port.Send(msg) {
		log.Printf("surface %s: dropped %s", id, msg.Type)
	}
}

// NotifyVisibility forwards a visibility change into the surface
func (h *Host) NotifyVisibility(id models.SurfaceID, visible bool) {
	if s := h.live(id); s != nil {
		s.controller.NotifyVisibility(visible)
	}
}

// Render writes the live document of the surface
func (h *Host) Render(ctx context.Context, id models.SurfaceID, w io.Writer) error {
	s := h.live(id)
	if s == nil {
		return ErrSurfaceEmpty
	}
	data, err := s.controller.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to render surface %s: %w", id, err)
	}
	_, err = w.Write(data)
	return err
}

// Stats reads the controller counters of the surface
func (h *Host) Stats(ctx context.Context, id models.SurfaceID) (scaler.Stats, error) {
	s := h.live(id)
	if s == nil {
		return scaler.Stats{}, ErrSurfaceEmpty
	}
	done := make(chan scaler.Stats, 1)
	s.loop.Post(func() { done <- s.controller.Stats() })
	select {
	case st := <-done:
		return st, nil
	case <-ctx.Done():
		return scaler.Stats{}, ctx.Err()
	}
}

// ContentRef reports what the surface currently holds
func (h *Host) ContentRef(id models.SurfaceID) models.ContentRef {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s := h.slots[id]; s != nil {
		return s.ref
	}
	return ""
}

// Close tears both surfaces down
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.slots {
		if s != nil {
			s.teardown()
			h.slots[i] = nil
		}
	}
}

func (h *Host) live(id models.SurfaceID) *slot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.slots[id]
	if s == nil || s.controller == nil {
		return nil
	}
	return s
}
