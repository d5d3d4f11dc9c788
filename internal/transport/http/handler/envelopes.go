package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/site-api/internal/application/session"
	"github.com/site-api/internal/domain"
)

const maxBodyBytes = 64 << 10

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type OKEnvelope struct {
	OK bool `json:"ok"`
}

// AccountView is the public shape of an account.
type AccountView struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Name    *string   `json:"name"`
	Created time.Time `json:"created,omitzero"`
}

// AuthEnvelope wraps login responses.
type AuthEnvelope struct {
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Session      *domain.Session `json:"session,omitempty"`
	Account      *AccountView    `json:"account,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session"`
	Account *AccountView    `json:"account,omitempty"`
}

func toAccountView(a *domain.Account) *AccountView {
	if a == nil {
		return nil
	}
	return &AccountView{ID: a.AccountID, Email: a.Email, Name: a.Name, Created: a.CreatedAt}
}

func toAuthEnvelope(res *session.Result) AuthEnvelope {
	return AuthEnvelope{
		AccessToken:  res.Bearer,
		RefreshToken: res.RefreshToken,
		Session:      res.Session,
		Account:      toAccountView(res.Session.Account),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeJSON reads a bounded JSON body into v and answers 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps domain sentinels to statuses. Anything unclassified is
// logged with the request id and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, clientMessage(err, domain.ErrBadRequest))
	case errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, domain.ErrInvalidCode.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, clientMessage(err, domain.ErrUnauthorized))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, clientMessage(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, clientMessage(err, domain.ErrNotFound))
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// clientMessage drops the trailing sentinel text from a wrapped error, so
// "email already registered: conflict" becomes "email already registered".
func clientMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
