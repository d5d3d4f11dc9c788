package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Backing store drivers.
const (
	StoreDynamo   = "dynamo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Mail transport drivers.
const (
	MailSMTP       = "smtp"
	MailMailerSend = "mailersend"
	MailLog        = "log"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once at startup and passed by pointer to whatever needs it.
type Config struct {
	AppPort  string `validate:"required,numeric"`
	AppEnv   string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`

	StoreDriver string `validate:"oneof=dynamo postgres memory"`
	DatabaseURL string `validate:"required_if=StoreDriver postgres"`

	AWSRegion      string `validate:"required_if=StoreDriver dynamo"`
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	ContactArchiveBucket string // optional; S3 archive of contact submissions
	ContactSNSTopicARN   string // optional; SNS notice on contact submissions
	SNSRegion            string

	JWTPrivateKeyPath  string        `validate:"required"`
	JWTPublicKeyPath   string        `validate:"required"`
	JWTExpiry          time.Duration `validate:"gt=0"`
	RefreshTokenExpiry time.Duration `validate:"gt=0"`

	MailDriver         string `validate:"oneof=smtp mailersend log"`
	MailFrom           string `validate:"required,email"`
	MailFromName       string
	SMTPHost           string `validate:"required_if=MailDriver smtp"`
	SMTPPort           int    `validate:"required_if=MailDriver smtp"`
	SMTPUsername       string
	SMTPPassword       string
	SMTPImplicitTLS    bool
	SMTPAllowAnonymous bool
	MailerSendAPIKey   string `validate:"required_if=MailDriver mailersend"`
	ContactTo          string `validate:"omitempty,email"`

	AllowedOrigins []string // CORS allowed origins
	TrustedProxy   bool     // read client IPs from X-Forwarded-For / X-Real-Ip
	RateLimitRPS   float64  `validate:"gt=0"`
	RateLimitBurst int      `validate:"gt=0"`
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts     string `validate:"required"`
	OTPs         string `validate:"required"`
	Sessions     string `validate:"required"`
	Testimonials string `validate:"required"`
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		StoreDriver: getEnv("STORE_DRIVER", StoreDynamo),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts:     getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			OTPs:         getEnv("DYNAMO_TABLE_OTPS", "email_otps"),
			Sessions:     getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Testimonials: getEnv("DYNAMO_TABLE_TESTIMONIALS", "testimonials"),
		},

		ContactArchiveBucket: getEnv("CONTACT_ARCHIVE_BUCKET", ""),
		ContactSNSTopicARN:   getEnv("CONTACT_SNS_TOPIC_ARN", ""),
		SNSRegion:            getEnv("SNS_REGION", "us-east-1"),

		JWTPrivateKeyPath:  getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:   getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:          getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		RefreshTokenExpiry: getEnvDuration("REFRESH_TOKEN_EXPIRY", 30*24*time.Hour),

		MailDriver:         getEnv("MAIL_DRIVER", MailSMTP),
		MailFrom:           getEnv("MAIL_FROM", "noreply@example.com"),
		MailFromName:       getEnv("MAIL_FROM_NAME", "No-Reply"),
		SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPImplicitTLS:    getEnvBool("SMTP_IMPLICIT_TLS", false),
		SMTPAllowAnonymous: getEnvBool("SMTP_ALLOW_ANONYMOUS", false),
		MailerSendAPIKey:   getEnv("MAILERSEND_API_KEY", ""),
		ContactTo:          getEnv("CONTACT_TO", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustedProxy:   getEnvBool("TRUSTED_PROXY", false),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

// Validate checks the loaded configuration and reports every invalid setting at once.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// ContactRecipient is where contact form messages are relayed, falling back to the sender address.
func (c *Config) ContactRecipient() string {
	if c.ContactTo != "" {
		return c.ContactTo
	}
	return c.MailFrom
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
