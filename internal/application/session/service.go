package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/site-api/internal/domain"
	"github.com/site-api/internal/pkg/id"
	pkgtoken "github.com/site-api/internal/pkg/token"
)

// Result is what a successful sign in hands back to the client.
type Result struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	Issue(ctx context.Context, a *domain.Account) (*Result, error)
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	CheckActive(ctx context.Context, sessionID string) error
	Logout(ctx context.Context, sessionID string) error
	RevokeAll(ctx context.Context, accountID string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
	DisableByAccount(ctx context.Context, accountID string) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, oldToken, newToken string, newExpiry int64) error
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type jwtSigner interface {
	Sign(accountID, email, name, sessionID string) (string, error)
}

type service struct {
	sessionRepo     sessionStore
	accountRepo     accountStore
	jwtProvider     jwtSigner
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	SessionRepo     sessionStore
	AccountRepo     accountStore
	JWTProvider     jwtSigner
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		sessionRepo:     deps.SessionRepo,
		accountRepo:     deps.AccountRepo,
		jwtProvider:     deps.JWTProvider,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

func (s *service) Issue(ctx context.Context, a *domain.Account) (*Result, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		AccountID:        a.AccountID,
		Email:            a.Email,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(a.AccountID, a.Email, a.DisplayName(), sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.Account = a
	return &Result{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
		return "", "", fmt.Errorf("invalid or expired refresh token: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", "", err
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	a, err := s.accountRepo.GetByEmail(ctx, sess.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", "", fmt.Errorf("account no longer exists: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", "", err
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, refreshToken, newToken, newExpiry); err != nil {
		return "", "", err
	}
	bearer, err := s.jwtProvider.Sign(a.AccountID, a.Email, a.DisplayName(), sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.active(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	a, err := s.accountRepo.GetByEmail(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	sess.Account = a
	return sess, nil
}

// CheckActive reports ErrUnauthorized for unknown or disabled sessions.
func (s *service) CheckActive(ctx context.Context, sessionID string) error {
	_, err := s.active(ctx, sessionID)
	return err
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}

func (s *service) RevokeAll(ctx context.Context, accountID string) error {
	return s.sessionRepo.DisableByAccount(ctx, accountID)
}

func (s *service) active(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("session not found: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	return sess, nil
}
