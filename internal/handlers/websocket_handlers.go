package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"html-presenter/internal/services"
)

// WebSocketHandler upgrades viewer connections and hands them to the hub
type WebSocketHandler struct {
	hub      *services.WebSocketService
	ctx      context.Context
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new websocket handler. Connections live
// until they close or ctx ends.
func NewWebSocketHandler(ctx context.Context, hub *services.WebSocketService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		ctx: ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		log.Printf("Rejected websocket origin: %s", origin)
		return false
	}
}

// HandleWebSocket serves a viewer connection
// GET /ws
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	h.hub.ServeClient(h.ctx, conn)
}
