package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/site-api/internal/config"
)

const queryTimeout = 3 * time.Second

// Connect opens a connection pool against cfg.DatabaseURL and pings it.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	pcfg.MinConns = 1
	pcfg.MaxConns = 10
	pcfg.MaxConnLifetime = time.Hour
	pcfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	email         TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL UNIQUE,
	name          TEXT,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS email_otps (
	email      TEXT NOT NULL,
	otp_id     TEXT NOT NULL,
	code       TEXT NOT NULL,
	purpose    TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	consumed   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (email, otp_id)
);

CREATE TABLE IF NOT EXISTS sessions (
	session_id         TEXT PRIMARY KEY,
	account_id         TEXT NOT NULL,
	email              TEXT NOT NULL,
	enable             BOOLEAN NOT NULL,
	refresh_token      TEXT NOT NULL UNIQUE,
	refresh_expires_at BIGINT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_account_id_idx ON sessions (account_id);

CREATE TABLE IF NOT EXISTS testimonials (
	testimonial_id TEXT PRIMARY KEY,
	sender_id      TEXT,
	author         TEXT NOT NULL DEFAULT '',
	message        TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

const codeUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
