package domain

import "time"

// Account is a registered user identity. Email is the unique key.
type Account struct {
	AccountID    string    `json:"id" dynamodbav:"account_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	Name         *string   `json:"name" dynamodbav:"name"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}

// DisplayName returns the account name or an empty string.
func (a *Account) DisplayName() string {
	if a == nil || a.Name == nil {
		return ""
	}
	return *a.Name
}
