package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/site-api/internal/config"
	"github.com/site-api/internal/domain"
	"github.com/site-api/internal/pkg/id"
)

const dialTimeout = 10 * time.Second

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, msg domain.MailMessage) error
}

type mailer struct {
	host           string
	port           int
	from           mail.Address
	username       string
	password       string
	implicitTLS    bool
	allowAnonymous bool
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:           cfg.SMTPHost,
		port:           cfg.SMTPPort,
		from:           mail.Address{Name: cfg.MailFromName, Address: cfg.MailFrom},
		username:       strings.TrimSpace(cfg.SMTPUsername),
		password:       cfg.SMTPPassword,
		implicitTLS:    cfg.SMTPImplicitTLS,
		allowAnonymous: cfg.SMTPAllowAnonymous,
	}
}

func (m *mailer) Send(ctx context.Context, msg domain.MailMessage) error {
	if !m.allowAnonymous && (m.username == "" || m.password == "") {
		return fmt.Errorf("smtp credentials missing: %w", domain.ErrMailerNotConfigured)
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return fmt.Errorf("empty recipient: %w", domain.ErrBadRequest)
	}
	raw := buildMessage(m.from, msg, "alt-"+id.New())
	if err := m.deliver(ctx, to, raw); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func (m *mailer) deliver(ctx context.Context, to string, raw []byte) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	tlsCfg := &tls.Config{ServerName: m.host}
	dialer := &net.Dialer{Timeout: dialTimeout}

	var conn net.Conn
	var err error
	if m.implicitTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if !m.implicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return err
			}
		}
	}
	if m.username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(m.from.Address); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage renders msg as a multipart/alternative MIME message with a
// text part followed by an HTML part.
func buildMessage(from mail.Address, msg domain.MailMessage, boundary string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", headerValue(msg.To))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", headerValue(msg.ReplyTo))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", msg.Text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", msg.HTML)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes()
}

// headerValue strips line breaks so user input cannot inject headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(strings.TrimSpace(s))
}

type logMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a development Mailer that logs messages instead of sending them.
func NewLogMailer(logger *slog.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (l *logMailer) Send(ctx context.Context, msg domain.MailMessage) error {
	l.logger.InfoContext(ctx, "mail (log driver)",
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
