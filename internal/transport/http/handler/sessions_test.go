package handler

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/site-api/internal/application/auth"
	"github.com/site-api/internal/application/session"
	"github.com/site-api/internal/config"
	"github.com/site-api/internal/domain"
	jwtinfra "github.com/site-api/internal/infrastructure/jwt"
	"github.com/site-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

func TestLogin_BadCredentials(t *testing.T) {
	authSvc := &mockAuthSvc{}
	authSvc.On("Login", mock.Anything, auth.LoginRequest{Email: "ada@example.com", Password: "wrong"}).
		Return(nil, fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized))
	h := NewSessionHandler(authSvc, &mockSessionSvc{})

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(t, http.MethodPost, "/v1/sessions/login",
		map[string]string{"email": "ada@example.com", "password": "wrong"}))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "incorrect email or password", decodeBody[MessageEnvelope](t, rr).Error)
}

func TestLogin_HappyPath(t *testing.T) {
	authSvc := &mockAuthSvc{}
	acct := &domain.Account{AccountID: "a1", Email: "ada@example.com"}
	authSvc.On("Login", mock.Anything, mock.Anything).Return(&session.Result{
		Bearer:       "jwt",
		RefreshToken: "rt",
		Session:      &domain.Session{SessionID: "s1", AccountID: "a1", Enable: true, RefreshToken: "rt", Account: acct},
	}, nil)
	h := NewSessionHandler(authSvc, &mockSessionSvc{})

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(t, http.MethodPost, "/v1/sessions/login",
		map[string]string{"email": "ada@example.com", "password": "hunter22"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[AuthEnvelope](t, rr)
	assert.Equal(t, "jwt", body.AccessToken)
	assert.Equal(t, "rt", body.RefreshToken)
	assert.Equal(t, "s1", body.Session.SessionID)
	assert.Equal(t, "ada@example.com", body.Account.Email)
}

func TestRefresh_MissingToken(t *testing.T) {
	h := NewSessionHandler(&mockAuthSvc{}, &mockSessionSvc{})
	rr := httptest.NewRecorder()
	h.Refresh(rr, jsonReq(t, http.MethodPost, "/v1/sessions/refresh", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRefresh_Rotates(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("Refresh", mock.Anything, "old").Return("jwt2", "new", nil)
	h := NewSessionHandler(&mockAuthSvc{}, svc)

	rr := httptest.NewRecorder()
	h.Refresh(rr, jsonReq(t, http.MethodPost, "/v1/sessions/refresh", map[string]string{"refresh_token": "old"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[AuthEnvelope](t, rr)
	assert.Equal(t, "jwt2", body.AccessToken)
	assert.Equal(t, "new", body.RefreshToken)
}

func TestGetCurrent_MissingClaims(t *testing.T) {
	h := NewSessionHandler(&mockAuthSvc{}, &mockSessionSvc{})
	rr := httptest.NewRecorder()
	h.GetCurrent(rr, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetCurrent_ThroughAuthMiddleware(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockSessionSvc{}
	acct := &domain.Account{AccountID: "a1", Email: "ada@example.com"}
	svc.On("CheckActive", mock.Anything, "s1").Return(nil)
	svc.On("GetCurrent", mock.Anything, "s1").
		Return(&domain.Session{SessionID: "s1", AccountID: "a1", Enable: true, Account: acct}, nil)
	h := NewSessionHandler(&mockAuthSvc{}, svc)

	token, err := p.Sign("a1", "ada@example.com", "", "s1")
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth(p, svc)(http.HandlerFunc(h.GetCurrent)).ServeHTTP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[SessionEnvelope](t, rr)
	assert.Equal(t, "s1", body.Session.SessionID)
	assert.Equal(t, "a1", body.Account.ID)
	svc.AssertExpectations(t)
}

func TestLogout_DisablesSession(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("Logout", mock.Anything, "s1").Return(nil)
	h := NewSessionHandler(&mockAuthSvc{}, svc)

	r := withIdentity(httptest.NewRequest(http.MethodPost, "/v1/sessions/logout", nil), "a1", "ada@example.com", "s1")
	rr := httptest.NewRecorder()
	h.Logout(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
