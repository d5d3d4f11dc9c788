package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/site-api/internal/domain"
	"github.com/site-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// MsgBadCredentials never says which of email or password was wrong.
const MsgBadCredentials = "incorrect email or password"

type Service interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, password string, name *string) (*domain.Account, error)
	CreateConsuming(ctx context.Context, email, password string, name *string, otp *domain.OTPRecord) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	VerifyPassword(ctx context.Context, email, password string) (*domain.Account, error)
	Delete(ctx context.Context, email string) error
	DeleteConsuming(ctx context.Context, email string, otp *domain.OTPRecord) error
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	CreateConsuming(ctx context.Context, a *domain.Account, otp *domain.OTPRecord) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Delete(ctx context.Context, email string) error
	DeleteConsuming(ctx context.Context, email string, otp *domain.OTPRecord) error
}

type service struct {
	repo     accountStore
	hashCost int

	dummyOnce sync.Once
	dummyHash []byte
}

type ServiceDeps struct {
	AccountRepo accountStore
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

func NewService(deps ServiceDeps) Service {
	cost := deps.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{repo: deps.AccountRepo, hashCost: cost}
}

func (s *service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) Create(ctx context.Context, email, password string, name *string) (*domain.Account, error) {
	a, err := s.newAccount(email, password, name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateConsuming creates the account and consumes otp in one atomic write.
func (s *service) CreateConsuming(ctx context.Context, email, password string, name *string, otp *domain.OTPRecord) (*domain.Account, error) {
	a, err := s.newAccount(email, password, name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateConsuming(ctx, a, otp); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *service) VerifyPassword(ctx context.Context, email, password string) (*domain.Account, error) {
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if a == nil {
		// keep timing close to the found-account path
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, fmt.Errorf("%s: %w", MsgBadCredentials, domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%s: %w", MsgBadCredentials, domain.ErrUnauthorized)
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, email string) error {
	return s.repo.Delete(ctx, email)
}

func (s *service) DeleteConsuming(ctx context.Context, email string, otp *domain.OTPRecord) error {
	return s.repo.DeleteConsuming(ctx, email, otp)
}

func (s *service) newAccount(email, password string, name *string) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("password too long: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		name = &trimmed
		if trimmed == "" {
			name = nil
		}
	}
	return &domain.Account{
		AccountID:    id.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (s *service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
	})
	return s.dummyHash
}
