package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/site-api/internal/application/session"
	"github.com/site-api/internal/domain"
	"github.com/site-api/internal/pkg/validate"
)

// User-facing messages carried by flow outcomes.
const (
	MsgBadCredentials   = "incorrect email or password"
	MsgInvalidCode      = "invalid or expired code"
	MsgAccountExists    = "an account already exists with this email, please sign in"
	MsgSignInManually   = "account created, please sign in"
	MsgCodeSent         = "a verification code was sent to your email"
	MsgDeletionCodeSent = "a confirmation code was sent to your email"
)

// bcrypt rejects passwords longer than this many bytes.
const maxPasswordBytes = 72

type RegisterRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Code     string  `json:"code" validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Identity is the authenticated caller, taken from the bearer token.
type Identity struct {
	AccountID string
	Email     string
	SessionID string
}

type Service interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (bool, error)
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, req LoginRequest) (*session.Result, error)
	RequestDeletion(ctx context.Context, id Identity) error
	ConfirmDeletion(ctx context.Context, id Identity, code string) error

	Advance(ctx context.Context, step Step, in Input) (*Outcome, error)
	AdvanceDeletion(ctx context.Context, id Identity, step Step, in Input) (*Outcome, error)
}

type otpIssuer interface {
	Issue(ctx context.Context, email, purpose string) (*domain.OTPRecord, error)
	Verify(ctx context.Context, email, code string) (bool, error)
	Match(ctx context.Context, email, code string) (*domain.OTPRecord, error)
}

type accountStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateConsuming(ctx context.Context, email, password string, name *string, otp *domain.OTPRecord) (*domain.Account, error)
	VerifyPassword(ctx context.Context, email, password string) (*domain.Account, error)
	DeleteConsuming(ctx context.Context, email string, otp *domain.OTPRecord) error
}

type sessionIssuer interface {
	Issue(ctx context.Context, a *domain.Account) (*session.Result, error)
	RevokeAll(ctx context.Context, accountID string) error
}

type codeMailer interface {
	SendRegistrationCode(ctx context.Context, to, code string) error
	SendDeletionCode(ctx context.Context, to, code string) error
}

type service struct {
	otps     otpIssuer
	accounts accountStore
	sessions sessionIssuer
	mail     codeMailer
	logger   *slog.Logger
}

type ServiceDeps struct {
	OTPService     otpIssuer
	AccountService accountStore
	SessionService sessionIssuer
	Notifier       codeMailer
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		otps:     deps.OTPService,
		accounts: deps.AccountService,
		sessions: deps.SessionService,
		mail:     deps.Notifier,
		logger:   logger,
	}
}

func (s *service) CheckEmail(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	return s.accounts.ExistsByEmail(ctx, email)
}

func (s *service) SendOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	rec, err := s.otps.Issue(ctx, email, domain.OTPPurposeRegister)
	if err != nil {
		return err
	}
	return s.mail.SendRegistrationCode(ctx, email, rec.Code)
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	if code == "" {
		return false, fmt.Errorf("code is required: %w", domain.ErrBadRequest)
	}
	return s.otps.Verify(ctx, email, code)
}

// Register re-checks the code, then creates the account and consumes the
// code in a single write.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*domain.Account, error) {
	req.Email = validate.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, domain.ErrBadRequest)
	}
	rec, err := s.otps.Match(ctx, req.Email, req.Code)
	if err != nil {
		return nil, err
	}
	return s.accounts.CreateConsuming(ctx, req.Email, req.Password, req.Name, rec)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*session.Result, error) {
	req.Email = validate.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	a, err := s.accounts.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.sessions.Issue(ctx, a)
}

func (s *service) RequestDeletion(ctx context.Context, id Identity) error {
	rec, err := s.otps.Issue(ctx, id.Email, domain.OTPPurposeDeleteAccount)
	if err != nil {
		return err
	}
	return s.mail.SendDeletionCode(ctx, id.Email, rec.Code)
}

// ConfirmDeletion deletes the caller's account and consumes the code in a
// single write, then disables every session of the account.
func (s *service) ConfirmDeletion(ctx context.Context, id Identity, code string) error {
	if code == "" {
		return fmt.Errorf("code is required: %w", domain.ErrBadRequest)
	}
	rec, err := s.otps.Match(ctx, id.Email, code)
	if err != nil {
		return err
	}
	if err := s.accounts.DeleteConsuming(ctx, id.Email, rec); err != nil {
		return err
	}
	if err := s.sessions.RevokeAll(ctx, id.AccountID); err != nil {
		s.logger.WarnContext(ctx, "account deleted but session revocation failed",
			"account_id", id.AccountID, "err", err)
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = validate.NormalizeEmail(email)
	if !validate.Email(email) {
		return "", fmt.Errorf("a valid email is required: %w", domain.ErrBadRequest)
	}
	return email, nil
}

func isInvalidCode(err error) bool {
	return errors.Is(err, domain.ErrInvalidCode)
}
