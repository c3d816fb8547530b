package handlers

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"html-presenter/internal/services"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(
	wsHandler *WebSocketHandler,
	staticHandler *StaticHandler,
	deckHandler *DeckHandler,
	viewerHandler *ViewerHandler,
	remoteHandler *RemoteHandler,
	corsOpts cors.Options,
) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", staticHandler.Health).Methods("GET")
	router.HandleFunc("/ws", wsHandler.HandleWebSocket)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/deck", deckHandler.GetDeck).Methods("GET")
	api.HandleFunc("/deck/upload", deckHandler.Upload).Methods("POST")
	api.HandleFunc("/deck/order", deckHandler.Reorder).Methods("PUT")
	api.HandleFunc("/deck/slides/{id}", deckHandler.DeleteSlide).Methods("DELETE")

	api.HandleFunc("/viewer/navigate", viewerHandler.Navigate).Methods("POST")
	api.HandleFunc("/viewer/next", viewerHandler.Next).Methods("POST")
	api.HandleFunc("/viewer/prev", viewerHandler.Prev).Methods("POST")
	api.HandleFunc("/viewer/resize", viewerHandler.Resize).Methods("POST")
	api.HandleFunc("/viewer/state", viewerHandler.GetState).Methods("GET")
	api.HandleFunc("/effects", viewerHandler.ListEffects).Methods("GET")
	api.HandleFunc("/transitions", viewerHandler.ListTransitions).Methods("GET")

	// list must be registered before the {macAddress} routes
	api.HandleFunc("/remote/press", remoteHandler.PressRemote).Methods("POST")
	api.HandleFunc("/remote/register", remoteHandler.RegisterRemote).Methods("POST")
	api.HandleFunc("/remote/list", remoteHandler.ListRemotes).Methods("GET")
	api.HandleFunc("/remote/{macAddress}", remoteHandler.GetRemote).Methods("GET")
	api.HandleFunc("/remote/{macAddress}", remoteHandler.DeleteRemote).Methods("DELETE")

	router.HandleFunc("/surfaces/{id}", viewerHandler.GetSurface).Methods("GET")
	router.HandleFunc("/surfaces/{id}/stats", viewerHandler.GetSurfaceStats).Methods("GET")
	router.HandleFunc("/content/{ref}", staticHandler.GetContent).Methods("GET")
	router.PathPrefix(services.StaticPrefix).Handler(staticHandler.Slides())

	return cors.Handler(corsOpts)(router)
}
