package usecase

import (
	"context"
)

// ResendOTP redelivers to the identifier recorded by the previous send
// attempt. The fresh issuance replaces the pending one, so the earlier
// code stops validating even if redelivery fails.
func (s *Usecase) ResendOTP(ctx context.Context, in AuthenticateInput) (*PageOutput, error) {
	ctx, span := s.startSpan(ctx, "ResendOTP")
	defer span.End()

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.AttemptedIdentifier == "" {
		sess, err = s.loadOrCreateSession(ctx, in.SessionID)
		if err != nil {
			return nil, err
		}

		return &PageOutput{Page: PageLogin, Message: msgSessionExpired, SecretKey: sess.SecretKey}, nil
	}

	user, err := s.lookupUser(ctx, sess.AttemptedIdentifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &PageOutput{Page: PageError, Message: msgDeliveryFailed, SecretKey: sess.SecretKey}, nil
	}

	return s.issueAndDeliver(ctx, in.SessionID, sess, user, sess.AttemptedIdentifier, true)
}
