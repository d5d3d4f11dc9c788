package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/site-api/internal/domain"
	"github.com/site-api/internal/pkg/id"
	"github.com/site-api/internal/pkg/validate"
)

const (
	minNameLen    = 2
	minMessageLen = 10
)

type Request struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

type Service interface {
	Submit(ctx context.Context, req Request) error
}

type relay interface {
	SendContact(ctx context.Context, to string, m domain.ContactMessage) error
}

type archiver interface {
	PutJSON(ctx context.Context, key string, v any) (string, error)
}

type publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

type service struct {
	relay     relay
	recipient string
	archive   archiver
	notices   publisher
	logger    *slog.Logger
}

type ServiceDeps struct {
	Notifier  relay
	Recipient string
	// Archive and Notices are optional.
	Archive archiver
	Notices publisher
	Logger  *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		relay:     deps.Notifier,
		recipient: deps.Recipient,
		archive:   deps.Archive,
		notices:   deps.Notices,
		logger:    logger,
	}
}

func (s *service) Submit(ctx context.Context, req Request) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if utf8.RuneCountInString(req.Name) < minNameLen || utf8.RuneCountInString(req.Message) < minMessageLen {
		return fmt.Errorf("name must be at least %d and message at least %d characters: %w",
			minNameLen, minMessageLen, domain.ErrBadRequest)
	}

	msg := domain.ContactMessage{
		MessageID:  id.New(),
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.relay.SendContact(ctx, s.recipient, msg); err != nil {
		return err
	}
	s.record(ctx, msg)
	return nil
}

// record runs the optional side effects. Failures are logged only.
func (s *service) record(ctx context.Context, msg domain.ContactMessage) {
	if s.archive != nil {
		if _, err := s.archive.PutJSON(ctx, "contact/"+msg.MessageID+".json", msg); err != nil {
			s.logger.WarnContext(ctx, "failed to archive contact message", "message_id", msg.MessageID, "err", err)
		}
	}
	if s.notices != nil {
		notice := fmt.Sprintf("New contact message %s from %s <%s>", msg.MessageID, msg.Name, msg.Email)
		if err := s.notices.Publish(ctx, "New contact message", notice); err != nil {
			s.logger.WarnContext(ctx, "failed to publish contact notice", "message_id", msg.MessageID, "err", err)
		}
	}
}
