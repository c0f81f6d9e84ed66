package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/goerror"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store keeps per-login-attempt flow state in redis, one JSON document per
// session id. The whole document is written on every save so the pending OTP
// issuance can never drift apart from its expiry.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	ins    instrument.Instrumentation
}

func NewStore(client *redis.Client, ttl time.Duration, ins instrument.Instrumentation) *Store {
	return &Store{
		client: client,
		prefix: "login:flow:",
		ttl:    ttl,
		ins:    ins,
	}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("login.outbound.session").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Get loads the flow session; goerror.ErrNotFound when none exists.
func (s *Store) Get(ctx context.Context, sessionID string) (_ *entity.FlowSession, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	raw, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		err = goerror.ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	var flow entity.FlowSession
	if err = json.Unmarshal(raw, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

// Save writes the whole flow session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sessionID string, flow entity.FlowSession) (err error) {
	ctx, span := s.startSpan(ctx, "Save")
	defer func() { s.endSpan(span, err) }()

	raw, err := json.Marshal(flow)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+sessionID, raw, s.ttl).Err()
}

// Delete removes the flow session, ending the attempt.
func (s *Store) Delete(ctx context.Context, sessionID string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
