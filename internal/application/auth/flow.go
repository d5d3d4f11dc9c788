package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/site-api/internal/application/session"
	"github.com/site-api/internal/domain"
)

// Step is a state of the sign-in / registration flow or the deletion sub-flow.
type Step string

const (
	StepEmail       Step = "email"
	StepPassword    Step = "password"
	StepOTP         Step = "otp"
	StepSetPassword Step = "set_password"
	StepDone        Step = "done"

	StepDeleteRequested Step = "delete_requested"
	StepDeleteOTP       Step = "delete_otp"
	StepDeleted         Step = "deleted"
)

// Input is everything a client may submit at a step. Each step reads only
// the fields it needs.
type Input struct {
	Email    string
	Password string
	Code     string
	Name     *string
}

// Outcome is the state the client should render next.
type Outcome struct {
	Step    Step
	Email   string
	Code    string // carried from otp into set_password
	Message string
	Session *session.Result
	Account *domain.Account
}

// Advance runs one transition of email -> {password | otp} -> set_password -> done.
// Recoverable user mistakes come back as an Outcome with a Message; only
// validation and infrastructure failures are returned as errors.
func (s *service) Advance(ctx context.Context, step Step, in Input) (*Outcome, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	switch step {
	case StepEmail:
		exists, err := s.accounts.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return &Outcome{Step: StepPassword, Email: email}, nil
		}
		if err := s.SendOTP(ctx, email); err != nil {
			return nil, err
		}
		return &Outcome{Step: StepOTP, Email: email, Message: MsgCodeSent}, nil

	case StepPassword:
		res, err := s.Login(ctx, LoginRequest{Email: email, Password: in.Password})
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrBadRequest) {
			return &Outcome{Step: StepPassword, Email: email, Message: MsgBadCredentials}, nil
		}
		if err != nil {
			return nil, err
		}
		return &Outcome{Step: StepDone, Email: email, Session: res, Account: res.Session.Account}, nil

	case StepOTP:
		ok, err := s.otps.Verify(ctx, email, in.Code)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Outcome{Step: StepOTP, Email: email, Message: MsgInvalidCode}, nil
		}
		return &Outcome{Step: StepSetPassword, Email: email, Code: in.Code}, nil

	case StepSetPassword:
		return s.setPassword(ctx, email, in)
	}
	return nil, fmt.Errorf("unknown flow state %q: %w", step, domain.ErrBadRequest)
}

func (s *service) setPassword(ctx context.Context, email string, in Input) (*Outcome, error) {
	a, err := s.Register(ctx, RegisterRequest{Name: in.Name, Email: email, Password: in.Password, Code: in.Code})
	switch {
	case errors.Is(err, domain.ErrConflict):
		return &Outcome{Step: StepPassword, Email: email, Message: MsgAccountExists}, nil
	case isInvalidCode(err):
		return &Outcome{Step: StepOTP, Email: email, Message: MsgInvalidCode}, nil
	case err != nil:
		return nil, err
	}

	res, err := s.sessions.Issue(ctx, a)
	if err != nil {
		s.logger.WarnContext(ctx, "account created but session issuance failed",
			"account_id", a.AccountID, "err", err)
		return &Outcome{Step: StepPassword, Email: email, Message: MsgSignInManually, Account: a}, nil
	}
	return &Outcome{Step: StepDone, Email: email, Session: res, Account: a}, nil
}

// AdvanceDeletion runs one transition of delete_requested -> delete_otp -> deleted
// for the authenticated caller.
func (s *service) AdvanceDeletion(ctx context.Context, id Identity, step Step, in Input) (*Outcome, error) {
	switch step {
	case StepDeleteRequested:
		if err := s.RequestDeletion(ctx, id); err != nil {
			return nil, err
		}
		return &Outcome{Step: StepDeleteOTP, Email: id.Email, Message: MsgDeletionCodeSent}, nil

	case StepDeleteOTP:
		err := s.ConfirmDeletion(ctx, id, in.Code)
		if isInvalidCode(err) {
			return &Outcome{Step: StepDeleteOTP, Email: id.Email, Message: MsgInvalidCode}, nil
		}
		if err != nil {
			return nil, err
		}
		return &Outcome{Step: StepDeleted, Email: id.Email}, nil
	}
	return nil, fmt.Errorf("unknown deletion state %q: %w", step, domain.ErrBadRequest)
}
