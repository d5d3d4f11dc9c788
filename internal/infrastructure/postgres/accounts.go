package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/site-api/internal/domain"
)

type AccountRepo struct{ pool *pgxpool.Pool }

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo { return &AccountRepo{pool: pool} }

const insertAccount = `
INSERT INTO accounts (email, account_id, name, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5)`

// consumeOTP flips consumed in the same statement that checks it, so only one
// caller can observe a row affected.
const consumeOTP = `UPDATE email_otps SET consumed = TRUE WHERE email=$1 AND otp_id=$2 AND consumed = FALSE`

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := r.pool.Exec(ctx, insertAccount, a.Email, a.AccountID, a.Name, a.PasswordHash, a.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) CreateConsuming(ctx context.Context, a *domain.Account, otp *domain.OTPRecord) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertAccount, a.Email, a.AccountID, a.Name, a.PasswordHash, a.CreatedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		if err != nil {
			return err
		}
		return consumeInTx(ctx, tx, otp)
	})
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `SELECT account_id, email, name, password_hash, created_at FROM accounts WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var a domain.Account
	err := r.pool.QueryRow(ctx, q, email).Scan(&a.AccountID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if isNoRows(err) {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) Delete(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE email=$1`, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *AccountRepo) DeleteConsuming(ctx context.Context, email string, otp *domain.OTPRecord) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE email=$1`, email)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("account not found: %w", domain.ErrNotFound)
		}
		return consumeInTx(ctx, tx, otp)
	})
}

func (r *AccountRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func consumeInTx(ctx context.Context, tx pgx.Tx, otp *domain.OTPRecord) error {
	tag, err := tx.Exec(ctx, consumeOTP, otp.Email, otp.OTPID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("otp already used: %w", domain.ErrInvalidCode)
	}
	return nil
}
