package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/site-api/internal/config"
	"github.com/site-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/site-api/internal/infrastructure/jwt"
	"github.com/site-api/internal/infrastructure/mailersend"
	"github.com/site-api/internal/infrastructure/memory"
	"github.com/site-api/internal/infrastructure/postgres"
	s3infra "github.com/site-api/internal/infrastructure/s3"
	"github.com/site-api/internal/infrastructure/smtp"
	"github.com/site-api/internal/infrastructure/sns"
	transporthttp "github.com/site-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration rejected", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	deps := &transporthttp.Deps{Logger: logger}
	closeStore, err := wireStore(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer closeStore()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}
	deps.JWTProvider = jwtProvider

	switch cfg.MailDriver {
	case config.MailMailerSend:
		deps.Mailer = mailersend.NewMailer(cfg)
	case config.MailLog:
		deps.Mailer = smtp.NewLogMailer(logger)
	default:
		deps.Mailer = smtp.NewMailer(cfg)
	}

	// Contact archive and notices are optional side channels.
	if cfg.ContactArchiveBucket != "" {
		s3Client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("s3 client: %w", err)
		}
		deps.Archive = s3infra.NewStore(s3Client, cfg.ContactArchiveBucket)
	}
	if cfg.ContactSNSTopicARN != "" {
		snsClient, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("sns client: %w", err)
		}
		deps.Notices = sns.NewPublisher(snsClient, cfg.ContactSNSTopicARN)
	}

	router, stopRouter := transporthttp.NewRouter(cfg, deps)
	defer stopRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreDriver, "mail", cfg.MailDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// wireStore connects the configured backing store and fills in the repositories.
// The returned func releases the store's resources.
func wireStore(ctx context.Context, cfg *config.Config, deps *transporthttp.Deps) (func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		deps.AccountRepo = postgres.NewAccountRepo(pool)
		deps.OTPRepo = postgres.NewOTPRepo(pool)
		deps.SessionRepo = postgres.NewSessionRepo(pool)
		deps.TestimonialRepo = postgres.NewTestimonialRepo(pool)
		return pool.Close, nil

	case config.StoreMemory:
		store := memory.NewStore()
		deps.AccountRepo = memory.NewAccountRepo(store)
		deps.OTPRepo = memory.NewOTPRepo(store)
		deps.SessionRepo = memory.NewSessionRepo(store)
		deps.TestimonialRepo = memory.NewTestimonialRepo(store)
		return func() {}, nil

	default:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Creates the tables if they don't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		t := cfg.DynamoTables
		deps.AccountRepo = dynamo.NewAccountRepo(client, t.Accounts, t.OTPs)
		deps.OTPRepo = dynamo.NewOTPRepo(client, t.OTPs)
		deps.SessionRepo = dynamo.NewSessionRepo(client, t.Sessions)
		deps.TestimonialRepo = dynamo.NewTestimonialRepo(client, t.Testimonials)
		return func() {}, nil
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
