package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/site-api/internal/application/auth"
	"github.com/site-api/internal/application/contact"
	"github.com/site-api/internal/application/session"
	"github.com/site-api/internal/application/testimonial"
	"github.com/site-api/internal/domain"
	jwtinfra "github.com/site-api/internal/infrastructure/jwt"
	"github.com/site-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) CheckEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuthSvc) SendOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthSvc) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuthSvc) Register(ctx context.Context, req auth.RegisterRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*session.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*session.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) RequestDeletion(ctx context.Context, id auth.Identity) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAuthSvc) ConfirmDeletion(ctx context.Context, id auth.Identity, code string) error {
	return m.Called(ctx, id, code).Error(0)
}

func (m *mockAuthSvc) Advance(ctx context.Context, step auth.Step, in auth.Input) (*auth.Outcome, error) {
	args := m.Called(ctx, step, in)
	if o, _ := args.Get(0).(*auth.Outcome); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) AdvanceDeletion(ctx context.Context, id auth.Identity, step auth.Step, in auth.Input) (*auth.Outcome, error) {
	args := m.Called(ctx, id, step, in)
	if o, _ := args.Get(0).(*auth.Outcome); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionSvc struct{ mock.Mock }

func (m *mockSessionSvc) Issue(ctx context.Context, a *domain.Account) (*session.Result, error) {
	args := m.Called(ctx, a)
	if r, _ := args.Get(0).(*session.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockSessionSvc) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) CheckActive(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockSessionSvc) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockSessionSvc) RevokeAll(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type mockContactSvc struct{ mock.Mock }

func (m *mockContactSvc) Submit(ctx context.Context, req contact.Request) error {
	return m.Called(ctx, req).Error(0)
}

type mockTestimonialSvc struct{ mock.Mock }

func (m *mockTestimonialSvc) List(ctx context.Context) (*testimonial.ListResult, error) {
	args := m.Called(ctx)
	if r, _ := args.Get(0).(*testimonial.ListResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func jsonReq(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(method, target, bytes.NewReader(b))
}

// withIdentity injects verified claims as the auth middleware would.
func withIdentity(r *http.Request, accountID, email, sessionID string) *http.Request {
	claims := &jwtinfra.Claims{AccountID: accountID, Email: email, SessionID: sessionID}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}
