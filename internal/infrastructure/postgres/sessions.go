package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/site-api/internal/domain"
)

type SessionRepo struct{ pool *pgxpool.Pool }

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo { return &SessionRepo{pool: pool} }

const selectSession = `
SELECT session_id, account_id, email, enable, refresh_token, refresh_expires_at, created_at, updated_at
FROM sessions`

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error {
	const q = `
INSERT INTO sessions (session_id, account_id, email, enable, refresh_token, refresh_expires_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, s.SessionID, s.AccountID, s.Email, s.Enable, s.RefreshToken, s.RefreshExpiresAt, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return r.getOne(ctx, selectSession+` WHERE session_id=$1`, sessionID)
}

func (r *SessionRepo) Disable(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := r.pool.Exec(ctx, `UPDATE sessions SET enable=FALSE, updated_at=$2 WHERE session_id=$1`, sessionID, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *SessionRepo) DisableByAccount(ctx context.Context, accountID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET enable=FALSE, updated_at=$2 WHERE account_id=$1 AND enable`, accountID, time.Now().UTC())
	return err
}

// GetByRefreshToken returns ErrUnauthorized when the session exists but is disabled.
func (r *SessionRepo) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	s, err := r.getOne(ctx, selectSession+` WHERE refresh_token=$1`, token)
	if err != nil {
		return nil, err
	}
	if !s.Enable {
		return nil, fmt.Errorf("session disabled: %w", domain.ErrUnauthorized)
	}
	return s, nil
}

// RotateRefreshToken only touches an enabled session still holding oldToken.
func (r *SessionRepo) RotateRefreshToken(ctx context.Context, sessionID, oldToken, newToken string, newExpiry int64) error {
	const q = `UPDATE sessions SET refresh_token=$3, refresh_expires_at=$4, updated_at=$5
		WHERE session_id=$1 AND refresh_token=$2 AND enable`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, sessionID, oldToken, newToken, newExpiry, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session disabled, missing or already rotated: %w", domain.ErrUnauthorized)
	}
	return nil
}

func (r *SessionRepo) getOne(ctx context.Context, q string, arg string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var s domain.Session
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&s.SessionID, &s.AccountID, &s.Email, &s.Enable, &s.RefreshToken, &s.RefreshExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if isNoRows(err) {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
