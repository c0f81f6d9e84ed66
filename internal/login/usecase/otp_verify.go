package usecase

import (
	"context"
	"log/slog"

	"github.com/wiratama/otplogin/internal/pkg/goerror"
	"github.com/wiratama/otplogin/internal/pkg/otpcode"
)

// VerifyOTP checks the submitted code against the pending issuance.
// A valid code finalizes the flow; an expired one stays invalid until
// the user asks for a resend.
func (s *Usecase) VerifyOTP(ctx context.Context, in AuthenticateInput) (*PageOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Pending == nil {
		sess, err = s.loadOrCreateSession(ctx, in.SessionID)
		if err != nil {
			return nil, err
		}

		return &PageOutput{Page: PageLogin, Message: msgSessionExpired, SecretKey: sess.SecretKey}, nil
	}

	status := otpcode.Classify(in.OTPAnswer, sess.Pending.Code, sess.Pending.ExpiresAt, s.clock.Now())
	if status == otpcode.StatusExpired {
		return &PageOutput{Page: PageOTP, Message: msgOTPExpired, SecretKey: sess.SecretKey}, nil
	}
	if status != otpcode.StatusValid {
		return &PageOutput{Page: PageOTP, Message: msgOTPInvalid, SecretKey: sess.SecretKey}, nil
	}

	identifier := sess.AttemptedIdentifier

	user, err := s.lookupUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, goerror.NewBusiness(msgInvalidCredentials, goerror.CodeUnauthorized)
	}

	sess.Pending = nil
	if err := s.sessions.Save(ctx, in.SessionID, *sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo save flow session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(user.ID, identifier)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate handoff token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishLoginSucceeded(ctx, LoginSucceededEvent{
		UserID:     user.ID,
		Identifier: identifier,
		Method:     "otp",
		RememberMe: sess.RememberMe,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish login succeeded event", "user_id", user.ID, "error", err)
	}

	return &PageOutput{
		Page:         PageSuccess,
		HandoffToken: token,
		RedirectURI:  sess.RedirectURI,
	}, nil
}
