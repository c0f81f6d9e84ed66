package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/goerror"
	"github.com/wiratama/otplogin/internal/pkg/passcrypt"
)

// PasswordLogin verifies a username and an encrypted password against
// stored credentials. Every credential failure surfaces the same
// message so callers cannot probe which part was wrong.
func (s *Usecase) PasswordLogin(ctx context.Context, in AuthenticateInput) (*PageOutput, error) {
	ctx, span := s.startSpan(ctx, "PasswordLogin")
	defer span.End()

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.SecretKey == "" {
		if sess, err = s.loadOrCreateSession(ctx, in.SessionID); err != nil {
			return nil, err
		}

		return &PageOutput{Page: PageLogin, Message: msgSessionExpired, SecretKey: sess.SecretKey}, nil
	}

	username := strings.TrimSpace(in.Username)

	sess.AttemptedIdentifier = username
	if err := s.sessions.Save(ctx, in.SessionID, *sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo save flow session", "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByIdentifier(ctx, username)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "identifier matches more than one user", "identifier", username)
		return nil, goerror.NewBusiness(duplicateUserMessage(username), goerror.CodeConflict)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "identifier", username)
		return nil, goerror.NewBusiness(msgInvalidCredentials, goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by identifier", "error", err)
		return nil, goerror.NewServer(err)
	}

	locked, err := s.guard.Locked(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check brute force guard", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if locked {
		slog.WarnContext(ctx, "user account is temporarily locked", "user_id", user.ID)
		return nil, goerror.NewBusiness(msgInvalidCredentials, goerror.CodeUnauthorized)
	}

	plain, err := passcrypt.Decrypt(in.Password, sess.SecretKey, in.IV)
	if err != nil {
		slog.WarnContext(ctx, "password payload could not be decrypted", "user_id", user.ID)
		return nil, goerror.NewBusiness(msgInvalidCredentials, goerror.CodeUnauthorized)
	}

	if !s.bcrypt.Verify(user.Password, plain) {
		if err := s.guard.RecordFailure(ctx, user.ID); err != nil {
			slog.ErrorContext(ctx, "failed to record login failure", "user_id", user.ID, "error", err)
		}

		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, goerror.NewBusiness(msgInvalidCredentials, goerror.CodeUnauthorized)
	}

	if !user.Enabled {
		slog.WarnContext(ctx, "user account is disabled", "user_id", user.ID)
		return nil, goerror.NewBusiness(msgInvalidCredentials, goerror.CodeUnauthorized)
	}

	if err := s.guard.Reset(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to reset brute force guard", "user_id", user.ID, "error", err)
	}

	sess.RememberMe = in.RememberMe == "on"
	sess.RedirectURI = in.RedirectURI
	if err := s.sessions.Save(ctx, in.SessionID, *sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo save flow session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(user.ID, username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate handoff token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishLoginSucceeded(ctx, LoginSucceededEvent{
		UserID:     user.ID,
		Identifier: username,
		Method:     "password",
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

// duplicateUserMessage names the conflicting field based on what the
// identifier looks like.
func duplicateUserMessage(identifier string) string {
	switch entity.ClassifyIdentifier(identifier) {
	case entity.IdentifierEmail:
		return "Multiple accounts share this email address. Please contact administrator."
	case entity.IdentifierPhone:
		return "Multiple accounts share this mobile number. Please contact administrator."
	default:
		return msgDuplicateUser
	}
}
