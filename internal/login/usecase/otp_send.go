package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/goerror"
	"github.com/wiratama/otplogin/internal/pkg/otpcode"
)

// SendOTP issues a fresh code for the submitted identifier and pushes
// it out over SMS or email.
func (s *Usecase) SendOTP(ctx context.Context, in AuthenticateInput) (*PageOutput, error) {
	ctx, span := s.startSpan(ctx, "SendOTP")
	defer span.End()

	sess, err := s.loadOrCreateSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	identifier := strings.TrimSpace(in.EmailOrMobile)
	if identifier == "" {
		return nil, goerror.NewInvalidInput(nil, "email_or_mobile", "email or mobile number is required")
	}

	user, err := s.lookupUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &PageOutput{Page: PageError, Message: msgDeliveryFailed, SecretKey: sess.SecretKey}, nil
	}

	sess.RedirectURI = in.RedirectURI

	return s.issueAndDeliver(ctx, in.SessionID, sess, user, identifier, false)
}

// lookupUser resolves an identifier to a user. Absence maps to nil so
// callers can fail soft without disclosing whether the account exists.
func (s *Usecase) lookupUser(ctx context.Context, identifier string) (*entity.User, error) {
	user, err := s.repoDB.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "identifier matches more than one user", "identifier", identifier)
		return nil, goerror.NewBusiness(duplicateUserMessage(identifier), goerror.CodeConflict)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "identifier", identifier)
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by identifier", "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}

// issueAndDeliver mints a new code, persists it together with the
// attempted identifier, then hands it to the delivery channel. The
// new issuance replaces any pending one before delivery, so a stale
// code can never validate once this runs.
func (s *Usecase) issueAndDeliver(
	ctx context.Context,
	sessionID string,
	sess *entity.FlowSession,
	user *entity.User,
	identifier string,
	resend bool,
) (*PageOutput, error) {
	issuance, err := otpcode.Issue(s.otpDigits(), s.otpTTL(), s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue one time password", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	sess.AttemptedIdentifier = identifier
	sess.Pending = &entity.PendingOTP{Code: issuance.Code, ExpiresAt: issuance.ExpiresAt}
	if err := s.sessions.Save(ctx, sessionID, *sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo save flow session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	channel, ok := s.deliverer.Deliver(ctx, *user, identifier, issuance.Code, s.otpTTL())
	if !ok {
		slog.WarnContext(ctx, "one time password delivery failed", "user_id", user.ID, "channel", channel)
		return &PageOutput{Page: PageError, Message: msgDeliveryFailed, SecretKey: sess.SecretKey}, nil
	}

	if err := s.repoMessaging.PublishLoginOTPDispatched(ctx, LoginOTPDispatchedEvent{
		UserID:     user.ID,
		Identifier: identifier,
		Channel:    channel,
		Resend:     resend,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp dispatched event", "user_id", user.ID, "error", err)
	}

	return &PageOutput{Page: PageOTP, Message: msgOTPSent, SecretKey: sess.SecretKey}, nil
}
