package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/site-api/internal/domain"
)

type OTPRepo struct{ pool *pgxpool.Pool }

func NewOTPRepo(pool *pgxpool.Pool) *OTPRepo { return &OTPRepo{pool: pool} }

func (r *OTPRepo) Put(ctx context.Context, o *domain.OTPRecord) error {
	const q = `
INSERT INTO email_otps (email, otp_id, code, purpose, expires_at, consumed, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, o.Email, o.OTPID, o.Code, o.Purpose, o.ExpiresAt, o.Consumed, o.CreatedAt)
	return err
}

// Latest returns the most recently issued record for email.
func (r *OTPRepo) Latest(ctx context.Context, email string) (*domain.OTPRecord, error) {
	const q = `
SELECT otp_id, email, code, purpose, expires_at, consumed, created_at
FROM email_otps WHERE email=$1 ORDER BY otp_id DESC LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var o domain.OTPRecord
	err := r.pool.QueryRow(ctx, q, email).Scan(&o.OTPID, &o.Email, &o.Code, &o.Purpose, &o.ExpiresAt, &o.Consumed, &o.CreatedAt)
	if isNoRows(err) {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OTPRepo) Consume(ctx context.Context, o *domain.OTPRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := r.pool.Exec(ctx, consumeOTP, o.Email, o.OTPID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("otp already used: %w", domain.ErrInvalidCode)
	}
	return nil
}
