package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/site-api/internal/domain"
	"github.com/site-api/internal/pkg/id"
	"github.com/site-api/internal/pkg/otpcode"
)

// TTL is how long an issued code stays valid.
const TTL = 10 * time.Minute

type Service interface {
	Issue(ctx context.Context, email, purpose string) (*domain.OTPRecord, error)
	Verify(ctx context.Context, email, code string) (bool, error)
	Match(ctx context.Context, email, code string) (*domain.OTPRecord, error)
	Consume(ctx context.Context, rec *domain.OTPRecord) error
}

type otpStore interface {
	Put(ctx context.Context, o *domain.OTPRecord) error
	Latest(ctx context.Context, email string) (*domain.OTPRecord, error)
	Consume(ctx context.Context, o *domain.OTPRecord) error
}

type service struct {
	repo     otpStore
	now      func() time.Time
	generate func() (string, error)
}

type ServiceDeps struct {
	OTPRepo otpStore
	// Now and Generate default to time.Now and otpcode.Generate.
	Now      func() time.Time
	Generate func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.OTPRepo, now: deps.Now, generate: deps.Generate}
	if s.now == nil {
		s.now = time.Now
	}
	if s.generate == nil {
		s.generate = otpcode.Generate
	}
	return s
}

func (s *service) Issue(ctx context.Context, email, purpose string) (*domain.OTPRecord, error) {
	code, err := s.generate()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec := &domain.OTPRecord{
		OTPID:     id.New(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(TTL),
		CreatedAt: now,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}
	return rec, nil
}

func (s *service) Verify(ctx context.Context, email, code string) (bool, error) {
	rec, err := s.Match(ctx, email, code)
	switch {
	case err == nil:
		return rec != nil, nil
	case errors.Is(err, domain.ErrInvalidCode):
		return false, nil
	default:
		return false, err
	}
}

// Match returns the newest record for email when it accepts code.
// Any rejection, including no record at all, is ErrInvalidCode.
func (s *service) Match(ctx context.Context, email, code string) (*domain.OTPRecord, error) {
	rec, err := s.repo.Latest(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	if !rec.ValidAt(s.now()) || subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return nil, domain.ErrInvalidCode
	}
	return rec, nil
}

func (s *service) Consume(ctx context.Context, rec *domain.OTPRecord) error {
	return s.repo.Consume(ctx, rec)
}
