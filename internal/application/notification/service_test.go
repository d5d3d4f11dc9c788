package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/site-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg domain.MailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func captured(m *mockMailer) domain.MailMessage {
	return m.Calls[0].Arguments.Get(1).(domain.MailMessage)
}

func TestSendRegistrationCode(t *testing.T) {
	m := &mockMailer{}
	m.On("Send", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, NewService(m).SendRegistrationCode(context.Background(), "new@x.com", "123456"))

	msg := captured(m)
	assert.Equal(t, "new@x.com", msg.To)
	assert.Contains(t, msg.Text, "123456")
	assert.Contains(t, msg.HTML, "123456")
	assert.Contains(t, msg.Text, "10 minutes")
}

func TestSendDeletionCode_DistinctSubject(t *testing.T) {
	m := &mockMailer{}
	m.On("Send", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, NewService(m).SendDeletionCode(context.Background(), "existing@x.com", "654321"))

	msg := captured(m)
	assert.Contains(t, msg.Subject, "deletion")
	assert.Contains(t, msg.HTML, "delete your account")
	assert.Contains(t, msg.Text, "654321")
}

func TestSendContact_EscapesAndSetsReplyTo(t *testing.T) {
	m := &mockMailer{}
	m.On("Send", mock.Anything, mock.Anything).Return(nil)

	err := NewService(m).SendContact(context.Background(), "owner@x.com", domain.ContactMessage{
		Name:    "Ann <b>",
		Email:   "ann@x.com",
		Message: "<script>alert(1)</script> hello there",
	})
	require.NoError(t, err)

	msg := captured(m)
	assert.Equal(t, "owner@x.com", msg.To)
	assert.Equal(t, "ann@x.com", msg.ReplyTo)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "Ann &lt;b&gt;")
}

func TestSend_PropagatesMailerError(t *testing.T) {
	m := &mockMailer{}
	m.On("Send", mock.Anything, mock.Anything).Return(domain.ErrMailerNotConfigured)

	err := NewService(m).SendRegistrationCode(context.Background(), "new@x.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrMailerNotConfigured))
}
