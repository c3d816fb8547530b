package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"html-presenter/internal/models"
	"html-presenter/internal/services"
)

// RemoteHandler handles HTTP requests from presenter clickers
type RemoteHandler struct {
	viewer  Viewer
	remotes *services.RemoteService
}

// NewRemoteHandler creates a new remote handler
func NewRemoteHandler(viewer Viewer, remotes *services.RemoteService) *RemoteHandler {
	return &RemoteHandler{
		viewer:  viewer,
		remotes: remotes,
	}
}

// RemotePressRequest represents a clicker press
type RemotePressRequest struct {
	MACAddress string `json:"macAddress"`
	// Action overrides the remote's configured action for this press
	Action string `json:"action,omitempty"`
}

// RemotePressResponse represents the response to a press
type RemotePressResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Processed bool   `json:"processed"` // Whether the press moved the viewer
}

// RegisterRemoteRequest represents a remote registration request
type RegisterRemoteRequest struct {
	MACAddress string `json:"macAddress"`
	Name       string `json:"name,omitempty"`
	Action     string `json:"action,omitempty"`
}

// PressRemote handles press events from physical clickers. Unknown remotes
// are registered on their first press.
// POST /api/remote/press
func (h *RemoteHandler) PressRemote(w http.ResponseWriter, r *http.Request) {
	var req RemotePressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.MACAddress == "" {
		http.Error(w, "MAC address is required", http.StatusBadRequest)
		return
	}

	remote, err := h.remotes.RecordPress(req.MACAddress)
	if errors.Is(err, services.ErrRemoteNotFound) {
		log.Printf("Remote not found, attempting auto-registration: MAC=%s", req.MACAddress)
		if _, regErr := h.remotes.RegisterRemote(req.MACAddress, "", models.RemoteNext); regErr != nil {
			log.Printf("Auto-registration failed: %v", regErr)
			writeJSON(w, http.StatusBadRequest, RemotePressResponse{
				Message: fmt.Sprintf("Remote not found and auto-registration failed: %v", regErr),
			})
			return
		}
		remote, err = h.remotes.RecordPress(req.MACAddress)
	}
	if err != nil {
		writeJSON(w, statusFor(err), RemotePressResponse{Message: err.Error()})
		return
	}

	action := remote.Action
	if req.Action != "" {
		action, err = services.ParseRemoteAction(req.Action)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var moved bool
	switch action {
	case models.RemotePrev:
		moved, err = h.viewer.Prev(ctx)
	default:
		moved, err = h.viewer.Next(ctx)
	}
	if err != nil {
		// the press itself was recorded
		writeJSON(w, http.StatusOK, RemotePressResponse{Success: true, Message: err.Error()})
		return
	}

	message := "Press processed successfully"
	if !moved {
		message = "Already at the end of the deck"
	}
	writeJSON(w, http.StatusOK, RemotePressResponse{Success: true, Message: message, Processed: moved})
}

// RegisterRemote registers a new clicker
// POST /api/remote/register
func (h *RemoteHandler) RegisterRemote(w http.ResponseWriter, r *http.Request) {
	var req RegisterRemoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.MACAddress == "" {
		http.Error(w, "MAC address is required", http.StatusBadRequest)
		return
	}

	action := models.RemoteNext
	if req.Action != "" {
		parsed, err := services.ParseRemoteAction(req.Action)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		action = parsed
	}

	remote, err := h.remotes.RegisterRemote(req.MACAddress, req.Name, action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remote)
}

// ListRemotes returns all registered remotes
// GET /api/remote/list
func (h *RemoteHandler) ListRemotes(w http.ResponseWriter, r *http.Request) {
	remotes, err := h.remotes.GetAllRemotes()
	if err != nil {
		writeError(w, err)
		return
	}
	// Always return an array, even if empty
	if remotes == nil {
		remotes = []*models.PresenterRemote{}
	}
	writeJSON(w, http.StatusOK, remotes)
}

// GetRemote returns a specific remote by MAC address
// GET /api/remote/{macAddress}
func (h *RemoteHandler) GetRemote(w http.ResponseWriter, r *http.Request) {
	remote, err := h.remotes.GetRemoteByMAC(mux.Vars(r)["macAddress"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remote)
}

// DeleteRemote removes a remote from the system
// DELETE /api/remote/{macAddress}
func (h *RemoteHandler) DeleteRemote(w http.ResponseWriter, r *http.Request) {
	macAddress := mux.Vars(r)["macAddress"]
	if macAddress == "" {
		http.Error(w, "MAC address is required", http.StatusBadRequest)
		return
	}
	if err := h.remotes.DeleteRemote(macAddress); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
