package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/site-api/internal/config"
	"github.com/site-api/internal/domain"
	"github.com/site-api/internal/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to TEST_DATABASE_URL, migrates and empties every table.
// The database is wiped, so never point it at real data.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, &config.Config{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool), "migrate must be idempotent")
	_, err = pool.Exec(ctx, `TRUNCATE accounts, email_otps, sessions, testimonials`)
	require.NoError(t, err)
	return pool
}

func newOTP(email, code string) *domain.OTPRecord {
	now := time.Now().UTC()
	return &domain.OTPRecord{
		OTPID:     id.New(),
		Email:     email,
		Code:      code,
		Purpose:   domain.OTPPurposeRegister,
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
	}
}

func newAccount(email string) *domain.Account {
	return &domain.Account{
		AccountID:    id.New(),
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestPG_OTPRepo_LatestAndConsume(t *testing.T) {
	pool := newTestPool(t)
	repo := NewOTPRepo(pool)
	ctx := context.Background()

	_, err := repo.Latest(ctx, "new@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	first := newOTP("new@x.com", "111111")
	require.NoError(t, repo.Put(ctx, first))
	second := newOTP("new@x.com", "222222")
	require.NoError(t, repo.Put(ctx, second))

	got, err := repo.Latest(ctx, "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, second.OTPID, got.OTPID)
	assert.Equal(t, "222222", got.Code)
	assert.False(t, got.Consumed)

	require.NoError(t, repo.Consume(ctx, got))
	err = repo.Consume(ctx, got)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))

	got, err = repo.Latest(ctx, "new@x.com")
	require.NoError(t, err)
	assert.True(t, got.Consumed)
}

func TestPG_AccountRepo_CreateConsuming(t *testing.T) {
	pool := newTestPool(t)
	accounts := NewAccountRepo(pool)
	otps := NewOTPRepo(pool)
	ctx := context.Background()

	o := newOTP("new@x.com", "123456")
	require.NoError(t, otps.Put(ctx, o))

	require.NoError(t, accounts.CreateConsuming(ctx, newAccount("new@x.com"), o))
	got, err := otps.Latest(ctx, "new@x.com")
	require.NoError(t, err)
	assert.True(t, got.Consumed)

	// duplicate email rolls back: the fresh code stays unconsumed
	o2 := newOTP("new@x.com", "654321")
	require.NoError(t, otps.Put(ctx, o2))
	err = accounts.CreateConsuming(ctx, newAccount("new@x.com"), o2)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	got, err = otps.Latest(ctx, "new@x.com")
	require.NoError(t, err)
	assert.False(t, got.Consumed)

	// consumed code rolls back: no account is created
	err = accounts.CreateConsuming(ctx, newAccount("other@x.com"), o)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	_, err = accounts.GetByEmail(ctx, "other@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPG_AccountRepo_ConcurrentCreateConsumingSingleWinner(t *testing.T) {
	pool := newTestPool(t)
	accounts := NewAccountRepo(pool)
	otps := NewOTPRepo(pool)
	ctx := context.Background()

	o := newOTP("race@x.com", "123456")
	require.NoError(t, otps.Put(ctx, o))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if accounts.CreateConsuming(ctx, newAccount("race@x.com"), o) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestPG_AccountRepo_DeleteConsuming(t *testing.T) {
	pool := newTestPool(t)
	accounts := NewAccountRepo(pool)
	otps := NewOTPRepo(pool)
	ctx := context.Background()

	require.NoError(t, accounts.Create(ctx, newAccount("existing@x.com")))
	err := accounts.Create(ctx, newAccount("existing@x.com"))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	o := newOTP("existing@x.com", "123456")
	require.NoError(t, otps.Put(ctx, o))
	require.NoError(t, otps.Consume(ctx, o))

	// consumed code: the account survives
	err = accounts.DeleteConsuming(ctx, "existing@x.com", o)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	_, err = accounts.GetByEmail(ctx, "existing@x.com")
	require.NoError(t, err)

	fresh := newOTP("existing@x.com", "654321")
	require.NoError(t, otps.Put(ctx, fresh))
	require.NoError(t, accounts.DeleteConsuming(ctx, "existing@x.com", fresh))
	_, err = accounts.GetByEmail(ctx, "existing@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// missing account: the code is left unconsumed
	again := newOTP("existing@x.com", "777777")
	require.NoError(t, otps.Put(ctx, again))
	err = accounts.DeleteConsuming(ctx, "existing@x.com", again)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	got, err := otps.Latest(ctx, "existing@x.com")
	require.NoError(t, err)
	assert.False(t, got.Consumed)
}

func TestPG_SessionRepo_RotateAndDisable(t *testing.T) {
	pool := newTestPool(t)
	sessions := NewSessionRepo(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, s := range []*domain.Session{
		{SessionID: "s1", AccountID: "a1", Email: "a@x.com", Enable: true, RefreshToken: "r1", CreatedAt: now, UpdatedAt: now},
		{SessionID: "s2", AccountID: "a1", Email: "a@x.com", Enable: true, RefreshToken: "r2", CreatedAt: now, UpdatedAt: now},
		{SessionID: "s3", AccountID: "a2", Email: "b@x.com", Enable: true, RefreshToken: "r3", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, sessions.Put(ctx, s))
	}

	require.NoError(t, sessions.RotateRefreshToken(ctx, "s3", "r3", "r3b", 42))
	err := sessions.RotateRefreshToken(ctx, "s3", "r3", "r3c", 42)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	got, err := sessions.GetByRefreshToken(ctx, "r3b")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.RefreshExpiresAt)

	require.NoError(t, sessions.DisableByAccount(ctx, "a1"))
	_, err = sessions.GetByRefreshToken(ctx, "r1")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	err = sessions.RotateRefreshToken(ctx, "s2", "r2", "r2b", 42)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	err = sessions.Disable(ctx, "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPG_TestimonialRepo_ListNewestFirst(t *testing.T) {
	pool := newTestPool(t)
	repo := NewTestimonialRepo(pool)
	ctx := context.Background()

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	now := time.Now().UTC()
	_, err = pool.Exec(ctx, `INSERT INTO testimonials (testimonial_id, author, message, created_at) VALUES
		('old', 'Ana', 'first', $1), ('new', '', 'second', $2)`, now.Add(-time.Hour), now)
	require.NoError(t, err)

	items, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].TestimonialID)
	assert.Equal(t, "old", items[1].TestimonialID)
	assert.Nil(t, items[0].SenderID)
}
