package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidCode covers every OTP rejection: wrong, expired, consumed or missing.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrMailerNotConfigured is returned when the mail transport lacks credentials.
	ErrMailerNotConfigured = errors.New("mail transport not configured")
	// ErrDelivery is returned when the mail transport rejects a message.
	ErrDelivery = errors.New("mail delivery failed")
)
