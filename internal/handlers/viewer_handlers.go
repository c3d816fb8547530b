package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"html-presenter/internal/engine"
	"html-presenter/internal/models"
	"html-presenter/internal/scaler"
	"html-presenter/internal/services"
)

// Viewer is the navigation surface the HTTP API drives
type Viewer interface {
	Navigate(ctx context.Context, index int) (bool, error)
	Next(ctx context.Context) (bool, error)
	Prev(ctx context.Context) (bool, error)
	Resize(ctx context.Context, width, height float64) error
	State() services.ViewerState
}

// Surfaces exposes the live surface documents
type Surfaces interface {
	Render(ctx context.Context, id models.SurfaceID, w io.Writer) error
	Stats(ctx context.Context, id models.SurfaceID) (scaler.Stats, error)
}

// Journal lists finished transitions
type Journal interface {
	Recent(limit int) ([]models.TransitionRecord, error)
	EffectCounts() (map[models.Effect]int, error)
}

const requestTimeout = 5 * time.Second

// ViewerHandler handles HTTP requests that drive the viewer
type ViewerHandler struct {
	viewer   Viewer
	surfaces Surfaces
	journal  Journal
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(viewer Viewer, surfaces Surfaces, journal Journal) *ViewerHandler {
	return &ViewerHandler{
		viewer:   viewer,
		surfaces: surfaces,
		journal:  journal,
	}
}

// NavigateRequest represents a request to show a slide
type NavigateRequest struct {
	Index int `json:"index"`
}

// ResizeRequest represents a new viewport size
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NavigateResponse represents the response to a navigation request
type NavigateResponse struct {
	Success bool `json:"success"`
	Moved   bool `json:"moved"`
	Active  int  `json:"active"`
}

// EffectInfo describes one catalog entry
type EffectInfo struct {
	Name  models.Effect `json:"name"`
	Next  PosesInfo     `json:"next"`
	Prev  PosesInfo     `json:"prev"`
	Count int           `json:"count"`
}

// PosesInfo is the JSON form of engine.Poses
type PosesInfo struct {
	EntryStart models.Pose `json:"entryStart"`
	Exit       models.Pose `json:"exit"`
	EntryFinal models.Pose `json:"entryFinal"`
}

func posesInfo(p engine.Poses) PosesInfo {
	return PosesInfo{EntryStart: p.EntryStart, Exit: p.Exit, EntryFinal: p.EntryFinal}
}

func (h *ViewerHandler) respondNavigation(w http.ResponseWriter, moved bool, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NavigateResponse{
		Success: true,
		Moved:   moved,
		Active:  h.viewer.State().Deck.ActiveIndex,
	})
}

// Navigate shows the slide at the requested index
// POST /api/viewer/navigate
func (h *ViewerHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	moved, err := h.viewer.Navigate(ctx, req.Index)
	if err == nil && !moved {
		http.Error(w, "slide index out of range", http.StatusNotFound)
		return
	}
	h.respondNavigation(w, moved, err)
}

// Next advances one slide
// POST /api/viewer/next
func (h *ViewerHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	moved, err := h.viewer.Next(ctx)
	h.respondNavigation(w, moved, err)
}

// Prev goes back one slide
// POST /api/viewer/prev
func (h *ViewerHandler) Prev(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	moved, err := h.viewer.Prev(ctx)
	h.respondNavigation(w, moved, err)
}

// Resize reports a new viewer window size
// POST /api/viewer/resize
func (h *ViewerHandler) Resize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := h.viewer.Resize(ctx, req.Width, req.Height); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetState returns the deck and both surfaces
// GET /api/viewer/state
func (h *ViewerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.viewer.State())
}

// ListEffects returns the effect catalog with how often each effect ran
// GET /api/effects
func (h *ViewerHandler) ListEffects(w http.ResponseWriter, r *http.Request) {
	counts := map[models.Effect]int{}
	if h.journal != nil {
		c, err := h.journal.EffectCounts()
		if err != nil {
			writeError(w, err)
			return
		}
		counts = c
	}

	effects := engine.Effects()
	out := make([]EffectInfo, 0, len(effects))
	for _, e := range effects {
		next, _ := engine.Lookup(e, models.DirectionNext)
		prev, _ := engine.Lookup(e, models.DirectionPrev)
		out = append(out, EffectInfo{
			Name:  e,
			Next:  posesInfo(next),
			Prev:  posesInfo(prev),
			Count: counts[e],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListTransitions returns the most recent finished transitions
// GET /api/transitions?limit=N
func (h *ViewerHandler) ListTransitions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	records := []models.TransitionRecord{}
	if h.journal != nil {
		recent, err := h.journal.Recent(limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if recent != nil {
			records = recent
		}
	}
	writeJSON(w, http.StatusOK, records)
}

// GetSurface returns the live, scaled document of a surface
// GET /surfaces/{id}
func (h *ViewerHandler) GetSurface(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseSurfaceID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var buf bytes.Buffer
	if err := h.surfaces.Render(ctx, id, &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// GetSurfaceStats returns the controller counters of a surface
// GET /surfaces/{id}/stats
func (h *ViewerHandler) GetSurfaceStats(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseSurfaceID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	stats, err := h.surfaces.Stats(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
