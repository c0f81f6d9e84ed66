package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/goerror"
	"github.com/wiratama/otplogin/internal/pkg/passcrypt"
)

type AuthenticateInput struct {
	SessionID     string `validate:"required"`
	FlagPage      string `validate:"pageflag"`
	Username      string
	Password      string
	IV            string
	EmailOrMobile string
	OTPAnswer     string
	RememberMe    string
	RedirectURI   string
}

// PageOutput tells the frontend which form to render next.
type PageOutput struct {
	Page         string
	Message      string
	SecretKey    string
	HandoffToken string
	RedirectURI  string
}

// Authenticate drives one step of the login flow, dispatching on the
// submitted page flag. An absent or unrecognized flag renders the
// initial login form.
func (s *Usecase) Authenticate(ctx context.Context, in AuthenticateInput) (*PageOutput, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	switch entity.ParsePageFlag(in.FlagPage) {
	case entity.PageFlagLoginWithPass:
		return s.PasswordLogin(ctx, in)
	case entity.PageFlagLogin:
		return s.SendOTP(ctx, in)
	case entity.PageFlagResend:
		return s.ResendOTP(ctx, in)
	case entity.PageFlagOTP:
		return s.VerifyOTP(ctx, in)
	default:
		return s.render(ctx, in)
	}
}

// render returns the initial login page, minting a session secret key
// when the flow has none yet.
func (s *Usecase) render(ctx context.Context, in AuthenticateInput) (*PageOutput, error) {
	ctx, span := s.startSpan(ctx, "render")
	defer span.End()

	sess, err := s.loadOrCreateSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	return &PageOutput{Page: PageLogin, SecretKey: sess.SecretKey}, nil
}

// loadOrCreateSession fetches the flow session, creating one with a
// fresh secret key when none exists. It never returns a session whose
// secret key is empty.
func (s *Usecase) loadOrCreateSession(ctx context.Context, id string) (*entity.FlowSession, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get flow session", "error", err)
		return nil, goerror.NewServer(err)
	}

	if sess == nil {
		sess = &entity.FlowSession{}
	}

	if sess.SecretKey == "" {
		sess.SecretKey = passcrypt.NewKey(s.clock.Now())
		if err := s.sessions.Save(ctx, id, *sess); err != nil {
			slog.ErrorContext(ctx, "failed to repo save flow session", "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	return sess, nil
}

// loadSession fetches the flow session, mapping absence to nil.
func (s *Usecase) loadSession(ctx context.Context, id string) (*entity.FlowSession, error) {
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get flow session", "error", err)
		return nil, goerror.NewServer(err)
	}

	return sess, nil
}
