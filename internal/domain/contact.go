package domain

import "time"

type ContactMessage struct {
	MessageID  string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}
