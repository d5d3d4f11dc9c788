package domain

// MailMessage is a single outgoing email with text and HTML alternatives.
type MailMessage struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}
