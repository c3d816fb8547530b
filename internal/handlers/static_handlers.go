package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"html-presenter/internal/models"
	"html-presenter/internal/services"
)

// StaticHandler serves slide files and uploaded documents
type StaticHandler struct {
	slidesDir string
	content   *services.ContentStore
	clients   func() int
}

// NewStaticHandler creates a handler for the slides directory and the content store.
// clients reports connected viewers for the health check and may be nil.
func NewStaticHandler(slidesDir string, content *services.ContentStore, clients func() int) *StaticHandler {
	return &StaticHandler{
		slidesDir: slidesDir,
		content:   content,
		clients:   clients,
	}
}

// Slides serves files from the slides directory
// GET /slides/...
func (h *StaticHandler) Slides() http.Handler {
	return http.StripPrefix(strings.TrimSuffix(services.StaticPrefix, "/"), http.FileServer(http.Dir(h.slidesDir)))
}

// GetContent returns an uploaded document
// GET /content/{ref}
func (h *StaticHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]
	if !strings.HasPrefix(ref, models.EphemeralPrefix) {
		ref = models.EphemeralPrefix + ref
	}
	data, err := h.content.Resolve(models.ContentRef(ref))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", h.content.MediaType(models.ContentRef(ref)))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// Health reports liveness
// GET /healthz
func (h *StaticHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if h.clients != nil {
		resp["viewers"] = h.clients()
	}
	writeJSON(w, http.StatusOK, resp)
}
