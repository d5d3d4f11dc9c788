// Package memory is a process-local backing store for development and tests.
// All repos built from one Store share a single lock, so writes that span
// accounts and OTPs are atomic.
package memory

import (
	"sync"

	"github.com/site-api/internal/domain"
)

type Store struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	otps         map[string][]domain.OTPRecord
	sessions     map[string]domain.Session
	testimonials []domain.Testimonial
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		otps:     make(map[string][]domain.OTPRecord),
		sessions: make(map[string]domain.Session),
	}
}

// findOTP returns a pointer into the stored slice; callers must hold mu.
func (s *Store) findOTP(email, otpID string) *domain.OTPRecord {
	recs := s.otps[email]
	for i := range recs {
		if recs[i].OTPID == otpID {
			return &recs[i]
		}
	}
	return nil
}
