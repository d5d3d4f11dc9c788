package domain

import "time"

// OTP purposes. Purpose is informational: verification always looks at the
// newest record for an email regardless of why it was issued.
const (
	OTPPurposeRegister      = "register"
	OTPPurposeDeleteAccount = "delete_account"
)

// OTPRecord is a one-time passcode mailed to an address.
// PK: email, SK: otp_id (ULID, so the newest record sorts last).
type OTPRecord struct {
	OTPID     string    `json:"id" dynamodbav:"otp_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"code"`
	Purpose   string    `json:"purpose" dynamodbav:"purpose"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
	Consumed  bool      `json:"consumed" dynamodbav:"consumed"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

// ValidAt reports whether the record can still be used at now.
// The expiry boundary is exclusive: a code presented exactly at ExpiresAt is expired.
func (o *OTPRecord) ValidAt(now time.Time) bool {
	return o != nil && !o.Consumed && o.ExpiresAt.After(now)
}
