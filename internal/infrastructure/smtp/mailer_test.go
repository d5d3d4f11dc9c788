package smtp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/mail"
	"strings"
	"testing"

	"github.com/site-api/internal/config"
	"github.com/site-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_MultipartWithReplyTo(t *testing.T) {
	raw := string(buildMessage(
		mail.Address{Name: "Site", Address: "site@example.com"},
		domain.MailMessage{
			To:      "owner@example.com",
			ReplyTo: "visitor@example.com",
			Subject: "New contact message",
			Text:    "plain body",
			HTML:    "<p>html body</p>",
		},
		"b1",
	))

	assert.Contains(t, raw, "From: \"Site\" <site@example.com>\r\n")
	assert.Contains(t, raw, "To: owner@example.com\r\n")
	assert.Contains(t, raw, "Reply-To: visitor@example.com\r\n")
	assert.Contains(t, raw, "Content-Type: multipart/alternative; boundary=\"b1\"")
	assert.Less(t, strings.Index(raw, "text/plain"), strings.Index(raw, "text/html"))
	assert.Contains(t, raw, "plain body")
	assert.Contains(t, raw, "<p>html body</p>")
	assert.True(t, strings.HasSuffix(raw, "--b1--\r\n"))
}

func TestBuildMessage_OmitsEmptyReplyTo(t *testing.T) {
	raw := string(buildMessage(mail.Address{Address: "site@example.com"}, domain.MailMessage{To: "a@x.com", Subject: "s"}, "b"))
	assert.NotContains(t, raw, "Reply-To:")
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	raw := string(buildMessage(mail.Address{Address: "site@example.com"}, domain.MailMessage{
		To:      "a@x.com",
		ReplyTo: "evil@x.com\r\nBcc: victim@x.com",
		Subject: "s",
	}, "b"))
	assert.NotContains(t, raw, "\r\nBcc:")
}

func TestSend_MissingCredentials(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "localhost", SMTPPort: 587, MailFrom: "site@example.com"})

	err := m.Send(context.Background(), domain.MailMessage{To: "a@x.com"})
	assert.True(t, errors.Is(err, domain.ErrMailerNotConfigured))
}

func TestSend_UnreachableServerIsDeliveryError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	m := NewMailer(&config.Config{
		SMTPHost:           "127.0.0.1",
		SMTPPort:           port,
		MailFrom:           "site@example.com",
		SMTPAllowAnonymous: true,
	})

	err = m.Send(context.Background(), domain.MailMessage{To: "a@x.com", Subject: "s"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
}

func TestLogMailer_LogsInsteadOfSending(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, m.Send(context.Background(), domain.MailMessage{To: "a@x.com", Subject: "Your code"}))
	assert.Contains(t, buf.String(), "a@x.com")
	assert.Contains(t, buf.String(), "Your code")
}
