package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// Ping answers /health-check/ping; any other action is rejected.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
