package memory

import (
	"context"
	"fmt"

	"github.com/site-api/internal/domain"
)

type OTPRepo struct{ s *Store }

func NewOTPRepo(s *Store) *OTPRepo { return &OTPRepo{s: s} }

func (r *OTPRepo) Put(_ context.Context, o *domain.OTPRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.otps[o.Email] = append(r.s.otps[o.Email], *o)
	return nil
}

// Latest returns the record with the greatest otp_id for email.
func (r *OTPRepo) Latest(_ context.Context, email string) (*domain.OTPRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	recs := r.s.otps[email]
	if len(recs) == 0 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	latest := recs[0]
	for _, o := range recs[1:] {
		if o.OTPID > latest.OTPID {
			latest = o
		}
	}
	return &latest, nil
}

func (r *OTPRepo) Consume(_ context.Context, o *domain.OTPRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findOTP(o.Email, o.OTPID)
	if rec == nil || rec.Consumed {
		return fmt.Errorf("otp already used: %w", domain.ErrInvalidCode)
	}
	rec.Consumed = true
	return nil
}
