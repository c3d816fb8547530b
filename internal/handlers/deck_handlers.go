package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"html-presenter/internal/models"
	"html-presenter/internal/services"
)

// Shower selects a slide without input throttling
type Shower interface {
	Show(index int) bool
}

// DeckHandler handles HTTP requests that edit the deck
type DeckHandler struct {
	deck     *services.DeckService
	ingestor *services.Ingestor
	content  services.Releaser
	viewer   Shower
	maxBytes int64
}

// NewDeckHandler creates a new deck handler. maxUploadMB bounds one upload request.
func NewDeckHandler(deck *services.DeckService, ingestor *services.Ingestor, content services.Releaser, viewer Shower, maxUploadMB int64) *DeckHandler {
	return &DeckHandler{
		deck:     deck,
		ingestor: ingestor,
		content:  content,
		viewer:   viewer,
		maxBytes: maxUploadMB << 20,
	}
}

// UploadResponse represents the response to an upload
type UploadResponse struct {
	Success bool           `json:"success"`
	First   int            `json:"first"`
	Slides  []models.Slide `json:"slides"`
}

// ReorderRequest represents a request to reorder the deck
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// GetDeck returns the slides and the active index
// GET /api/deck
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deck.State())
}

// Upload adds uploaded HTML or Markdown files to the end of the deck and
// shows the first of them
// POST /api/deck/upload
func (h *DeckHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "files are required", http.StatusBadRequest)
		return
	}

	slides := make([]models.Slide, 0, len(files))
	release := func() {
		for _, s := range slides {
			h.content.Release(s.ContentRef)
		}
	}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			release()
			http.Error(w, fmt.Sprintf("failed to open %s", fh.Filename), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			release()
			http.Error(w, fmt.Sprintf("failed to read %s", fh.Filename), http.StatusBadRequest)
			return
		}
		slide, err := h.ingestor.Ingest(fh.Filename, data)
		if err != nil {
			release()
			writeError(w, err)
			return
		}
		slides = append(slides, slide)
	}

	first, err := h.deck.AddSlides(slides...)
	if err != nil {
		release()
		writeError(w, err)
		return
	}
	log.Printf("Uploaded %d slide(s), first at index %d", len(slides), first)
	h.viewer.Show(first)

	writeJSON(w, http.StatusOK, UploadResponse{Success: true, First: first, Slides: slides})
}

// Reorder applies a new slide order
// PUT /api/deck/order
func (h *DeckHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.deck.Reorder(req.IDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deck.State())
}

// DeleteSlide removes a slide from the deck
// DELETE /api/deck/slides/{id}
func (h *DeckHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "slide id is required", http.StatusBadRequest)
		return
	}
	if _, err := h.deck.DeleteSlide(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deck.State())
}
