package handler

import (
	"net/http"

	"github.com/site-api/internal/application/auth"
	"github.com/site-api/internal/transport/http/middleware"
)

// AuthHandler serves the email-first sign in and registration endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

type emailRequest struct {
	Email string `json:"email"`
}

type codeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// FlowRequest is one submitted step of the sign in state machine.
type FlowRequest struct {
	State    auth.Step `json:"state"`
	Email    string    `json:"email"`
	Code     string    `json:"code,omitempty"`
	Password string    `json:"password,omitempty"`
	Name     *string   `json:"name,omitempty"`
}

// FlowEnvelope tells the client which step to render next.
type FlowEnvelope struct {
	State        auth.Step    `json:"state"`
	Email        string       `json:"email,omitempty"`
	Code         string       `json:"code,omitempty"`
	Message      string       `json:"message,omitempty"`
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	Account      *AccountView `json:"account,omitempty"`
}

func toFlowEnvelope(o *auth.Outcome) FlowEnvelope {
	env := FlowEnvelope{
		State:   o.Step,
		Email:   o.Email,
		Code:    o.Code,
		Message: o.Message,
		Account: toAccountView(o.Account),
	}
	if o.Session != nil {
		env.AccessToken = o.Session.Bearer
		env.RefreshToken = o.Session.RefreshToken
	}
	return env
}

func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	exists, err := h.svc.CheckEmail(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SendOTP(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	valid, err := h.svc.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountView(a))
}

// Flow advances the sign in / registration state machine by one step.
func (h *AuthHandler) Flow(w http.ResponseWriter, r *http.Request) {
	var req FlowRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.svc.Advance(r.Context(), req.State, auth.Input{
		Email:    req.Email,
		Password: req.Password,
		Code:     req.Code,
		Name:     req.Name,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlowEnvelope(out))
}

// identityFrom builds the caller identity from the verified bearer claims.
func identityFrom(r *http.Request) (auth.Identity, bool) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return auth.Identity{}, false
	}
	return auth.Identity{AccountID: c.AccountID, Email: c.Email, SessionID: c.SessionID}, true
}
