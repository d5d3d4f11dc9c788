package handler

import (
	"net/http"

	"github.com/site-api/internal/application/contact"
)

type ContactHandler struct {
	svc contact.Service
}

func NewContactHandler(svc contact.Service) *ContactHandler { return &ContactHandler{svc: svc} }

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contact.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.Submit(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}
