package dynamo

// DynamoDB attribute names used in key maps and expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail            = "email"
	fieldOTPID            = "otp_id"
	fieldConsumed         = "consumed"
	fieldSessionID        = "session_id"
	fieldAccountID        = "account_id"
	fieldEnable           = "enable"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldUpdatedAt        = "updated_at"
)
