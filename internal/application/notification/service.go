package notification

import (
	"context"
	"fmt"
	"html"

	"github.com/site-api/internal/domain"
)

type Service interface {
	SendRegistrationCode(ctx context.Context, to, code string) error
	SendDeletionCode(ctx context.Context, to, code string) error
	SendContact(ctx context.Context, to string, m domain.ContactMessage) error
}

type mailer interface {
	Send(ctx context.Context, msg domain.MailMessage) error
}

type service struct {
	mailer mailer
}

func NewService(m mailer) Service {
	return &service{mailer: m}
}

func (s *service) SendRegistrationCode(ctx context.Context, to, code string) error {
	return s.mailer.Send(ctx, domain.MailMessage{
		To:      to,
		Subject: "Your verification code",
		Text:    fmt.Sprintf("Your verification code is: %s. It expires in 10 minutes.", code),
		HTML:    fmt.Sprintf("<p>Here is your verification code:</p><h2>%s</h2><p>It expires in 10 minutes.</p>", code),
	})
}

func (s *service) SendDeletionCode(ctx context.Context, to, code string) error {
	return s.mailer.Send(ctx, domain.MailMessage{
		To:      to,
		Subject: "Account deletion - your confirmation code",
		Text:    fmt.Sprintf("You asked to delete your account. Your confirmation code is: %s. It expires in 10 minutes.", code),
		HTML: fmt.Sprintf("<p>You asked to delete your account.</p><p>Here is your confirmation code:</p>"+
			"<h2>%s</h2><p>This code expires in 10 minutes.</p>", code),
	})
}

// SendContact relays a contact form submission. Replies go to the submitter.
func (s *service) SendContact(ctx context.Context, to string, m domain.ContactMessage) error {
	return s.mailer.Send(ctx, domain.MailMessage{
		To:      to,
		ReplyTo: m.Email,
		Subject: "Contact: " + m.Name,
		Text: fmt.Sprintf("You received a new message through the contact form.\n\nName: %s\nEmail: %s\n\nMessage:\n%s",
			m.Name, m.Email, m.Message),
		HTML: fmt.Sprintf(`<div>
  <h2>New contact message</h2>
  <p><strong>Name:</strong> %s</p>
  <p><strong>Email:</strong> %s</p>
  <p><strong>Message:</strong></p>
  <pre style="white-space:pre-wrap;font-family:inherit;">%s</pre>
</div>`, html.EscapeString(m.Name), html.EscapeString(m.Email), html.EscapeString(m.Message)),
	})
}
