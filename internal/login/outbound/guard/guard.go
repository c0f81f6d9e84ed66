package guard

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Guard is a redis-backed brute force counter. After maxFailures recorded
// failures within the window a user id reports as locked until the window
// expires; a successful login clears the counter.
type Guard struct {
	client      *redis.Client
	prefix      string
	maxFailures int64
	window      time.Duration
	ins         instrument.Instrumentation
}

func NewGuard(client *redis.Client, maxFailures int, window time.Duration, ins instrument.Instrumentation) *Guard {
	return &Guard{
		client:      client,
		prefix:      "login:failures:",
		maxFailures: int64(maxFailures),
		window:      window,
		ins:         ins,
	}
}

func (g *Guard) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return g.ins.Tracer("login.outbound.guard").Start(ctx, name)
}

func (g *Guard) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (g *Guard) key(userID int64) string {
	return g.prefix + strconv.FormatInt(userID, 10)
}

// Locked reports whether the user has exhausted the failure budget.
func (g *Guard) Locked(ctx context.Context, userID int64) (_ bool, err error) {
	ctx, span := g.startSpan(ctx, "Locked")
	defer func() { g.endSpan(span, err) }()

	count, err := g.client.Get(ctx, g.key(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return count >= g.maxFailures, nil
}

// RecordFailure bumps the failure counter, starting the window on first miss.
func (g *Guard) RecordFailure(ctx context.Context, userID int64) (err error) {
	ctx, span := g.startSpan(ctx, "RecordFailure")
	defer func() { g.endSpan(span, err) }()

	key := g.key(userID)
	count, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return g.client.Expire(ctx, key, g.window).Err()
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (g *Guard) Reset(ctx context.Context, userID int64) (err error) {
	ctx, span := g.startSpan(ctx, "Reset")
	defer func() { g.endSpan(span, err) }()

	return g.client.Del(ctx, g.key(userID)).Err()
}
