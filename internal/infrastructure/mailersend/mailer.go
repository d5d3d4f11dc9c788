package mailersend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
	"github.com/site-api/internal/config"
	"github.com/site-api/internal/domain"
)

const sendTimeout = 10 * time.Second

// Mailer delivers mail through the MailerSend HTTP API.
type Mailer struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

// NewMailer builds a Mailer. Without an API key every Send reports ErrMailerNotConfigured.
func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		from: mailersend.From{Name: cfg.MailFromName, Email: cfg.MailFrom},
	}
	if cfg.MailerSendAPIKey != "" {
		m.client = mailersend.NewMailersend(cfg.MailerSendAPIKey)
	}
	return m
}

func (m *Mailer) Send(ctx context.Context, msg domain.MailMessage) error {
	if m.client == nil {
		return fmt.Errorf("mailersend api key missing: %w", domain.ErrMailerNotConfigured)
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	em := m.client.Email.NewMessage()
	em.SetFrom(m.from)
	em.SetRecipients([]mailersend.Recipient{{Email: strings.TrimSpace(msg.To)}})
	em.SetSubject(msg.Subject)
	if msg.ReplyTo != "" {
		em.ReplyTo = mailersend.ReplyTo{Email: msg.ReplyTo}
	}
	if strings.TrimSpace(msg.Text) != "" {
		em.SetText(msg.Text)
	}
	if strings.TrimSpace(msg.HTML) != "" {
		em.SetHTML(msg.HTML)
	}

	res, err := m.client.Email.Send(ctx, em)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	if res != nil && res.Body != nil {
		res.Body.Close()
	}
	return nil
}
