package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"html-presenter/internal/frames"
	"html-presenter/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrTransitionInProgress),
		errors.Is(err, services.ErrDuplicateSlide):
		return http.StatusConflict
	case errors.Is(err, services.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrSlideNotFound),
		errors.Is(err, services.ErrContentNotFound),
		errors.Is(err, services.ErrRemoteNotFound),
		errors.Is(err, frames.ErrSurfaceEmpty):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidOrder),
		errors.Is(err, services.ErrInvalidContent),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrInvalidViewport),
		errors.Is(err, services.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrRemoteInactive):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}
