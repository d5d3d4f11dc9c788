package handler

import (
	"net/http"

	"github.com/site-api/internal/application/testimonial"
)

type TestimonialHandler struct {
	svc testimonial.Service
}

func NewTestimonialHandler(svc testimonial.Service) *TestimonialHandler {
	return &TestimonialHandler{svc: svc}
}

func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
