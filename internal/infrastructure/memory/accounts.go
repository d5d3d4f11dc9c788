package memory

import (
	"context"
	"fmt"

	"github.com/site-api/internal/domain"
)

type AccountRepo struct{ s *Store }

func NewAccountRepo(s *Store) *AccountRepo { return &AccountRepo{s: s} }

func (r *AccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.Email]; ok {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	r.s.accounts[a.Email] = *a
	return nil
}

func (r *AccountRepo) CreateConsuming(_ context.Context, a *domain.Account, otp *domain.OTPRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.Email]; ok {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	rec := r.s.findOTP(otp.Email, otp.OTPID)
	if rec == nil || rec.Consumed {
		return fmt.Errorf("otp already used: %w", domain.ErrInvalidCode)
	}
	rec.Consumed = true
	r.s.accounts[a.Email] = *a
	return nil
}

func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[email]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (r *AccountRepo) Delete(_ context.Context, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[email]; !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	delete(r.s.accounts, email)
	return nil
}

func (r *AccountRepo) DeleteConsuming(_ context.Context, email string, otp *domain.OTPRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[email]; !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	rec := r.s.findOTP(otp.Email, otp.OTPID)
	if rec == nil || rec.Consumed {
		return fmt.Errorf("otp already used: %w", domain.ErrInvalidCode)
	}
	rec.Consumed = true
	delete(r.s.accounts, email)
	return nil
}
