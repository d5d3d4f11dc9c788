package handler

import (
	"net/http"

	"github.com/site-api/internal/application/auth"
)

// AccountHandler serves the authenticated account deletion endpoints.
type AccountHandler struct {
	svc auth.Service
}

func NewAccountHandler(svc auth.Service) *AccountHandler { return &AccountHandler{svc: svc} }

func (h *AccountHandler) RequestDeletion(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.RequestDeletion(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

func (h *AccountHandler) ConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ConfirmDeletion(r.Context(), id, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

// DeletionFlow advances delete_requested -> delete_otp -> deleted by one step.
func (h *AccountHandler) DeletionFlow(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req FlowRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.AdvanceDeletion(r.Context(), id, req.State, auth.Input{Code: req.Code})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlowEnvelope(out))
}
