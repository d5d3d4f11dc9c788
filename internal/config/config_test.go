package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_EXPIRY", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, StoreDynamo, cfg.StoreDriver)
	assert.Equal(t, MailSMTP, cfg.MailDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "email_otps", cfg.DynamoTables.OTPs)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ReadsOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/site")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_IMPLICIT_TLS", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.True(t, cfg.SMTPImplicitTLS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestValidate_PostgresRequiresDatabaseURL(t *testing.T) {
	cfg := Load()
	cfg.StoreDriver = StorePostgres
	cfg.DatabaseURL = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}

func TestValidate_UnknownDrivers(t *testing.T) {
	cfg := Load()
	cfg.StoreDriver = "mongo"
	cfg.MailDriver = "carrier-pigeon"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StoreDriver")
	assert.Contains(t, err.Error(), "MailDriver")
}

func TestValidate_MailerSendRequiresAPIKey(t *testing.T) {
	cfg := Load()
	cfg.MailDriver = MailMailerSend
	cfg.MailerSendAPIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MailerSendAPIKey")

	cfg.MailerSendAPIKey = "mlsn.key"
	require.NoError(t, cfg.Validate())
}

func TestLoad_TrustedProxyDefaultsOff(t *testing.T) {
	t.Setenv("TRUSTED_PROXY", "")
	assert.False(t, Load().TrustedProxy)

	t.Setenv("TRUSTED_PROXY", "true")
	assert.True(t, Load().TrustedProxy)
}

func TestValidate_BadSenderAddress(t *testing.T) {
	cfg := Load()
	cfg.MailFrom = "not-an-email"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MailFrom")
}

func TestContactRecipient_FallsBackToSender(t *testing.T) {
	cfg := &Config{MailFrom: "site@example.com"}
	assert.Equal(t, "site@example.com", cfg.ContactRecipient())

	cfg.ContactTo = "owner@example.com"
	assert.Equal(t, "owner@example.com", cfg.ContactRecipient())
}
