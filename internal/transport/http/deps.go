package http

import (
	"context"
	"log/slog"

	"github.com/site-api/internal/domain"
	jwtinfra "github.com/site-api/internal/infrastructure/jwt"
)

// AccountRepository is the minimal interface the router requires from an account store.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	// CreateConsuming inserts the account and marks otp consumed in one atomic write.
	CreateConsuming(ctx context.Context, a *domain.Account, otp *domain.OTPRecord) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Delete(ctx context.Context, email string) error
	DeleteConsuming(ctx context.Context, email string, otp *domain.OTPRecord) error
}

// OTPRepository is the minimal interface the router requires from an OTP store.
type OTPRepository interface {
	Put(ctx context.Context, o *domain.OTPRecord) error
	Latest(ctx context.Context, email string) (*domain.OTPRecord, error)
	Consume(ctx context.Context, o *domain.OTPRecord) error
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
	DisableByAccount(ctx context.Context, accountID string) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, oldToken, newToken string, newExpiry int64) error
}

// TestimonialRepository is the minimal interface the router requires from a testimonial store.
type TestimonialRepository interface {
	List(ctx context.Context) ([]domain.Testimonial, error)
}

// Mailer delivers one message through the configured transport.
type Mailer interface {
	Send(ctx context.Context, msg domain.MailMessage) error
}

// ObjectStore archives JSON documents.
type ObjectStore interface {
	PutJSON(ctx context.Context, key string, v any) (string, error)
}

// NoticePublisher fans a short notice out to subscribers.
type NoticePublisher interface {
	Publish(ctx context.Context, subject, message string) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo     AccountRepository
	OTPRepo         OTPRepository
	SessionRepo     SessionRepository
	TestimonialRepo TestimonialRepository
	Mailer          Mailer
	JWTProvider     *jwtinfra.Provider

	// Archive and Notices are optional; leave nil when not configured.
	Archive ObjectStore
	Notices NoticePublisher

	Logger *slog.Logger
}
