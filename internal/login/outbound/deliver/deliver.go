// Package deliver routes issued codes to the channel matching the
// user's identifier.
package deliver

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"github.com/wiratama/otplogin/internal/pkg/smsgateway"
	"go.opentelemetry.io/otel/trace"
)

// Channel names reported back to callers and published on events.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// EmailSender sends a code to an email address; ttl is minutes.
type EmailSender interface {
	SendOTPEmail(ctx context.Context, destination, code, ttl string) bool
}

// Deliverer fans a code out to SMS or email based on what the
// identifier looks like.
type Deliverer struct {
	sms   smsgateway.Sender
	email EmailSender
	ins   instrument.Instrumentation
}

func New(sms smsgateway.Sender, email EmailSender, ins instrument.Instrumentation) *Deliverer {
	return &Deliverer{
		sms:   sms,
		email: email,
		ins:   ins,
	}
}

func (d *Deliverer) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return d.ins.Tracer("login.outbound.deliver").Start(ctx, name)
}

// Deliver sends code to the user over the channel implied by identifier.
// It returns the channel used and whether delivery succeeded.
func (d *Deliverer) Deliver(ctx context.Context, user entity.User, identifier, code string, ttl time.Duration) (string, bool) {
	ctx, span := d.startSpan(ctx, "Deliver")
	defer span.End()

	minutes := strconv.Itoa(int(ttl / time.Minute))

	switch entity.ClassifyIdentifier(identifier) {
	case entity.IdentifierPhone:
		dest := user.Phone
		if dest == "" {
			dest = identifier
		}

		return ChannelSMS, d.sms.Send(ctx, dest, code, minutes)
	case entity.IdentifierEmail:
		dest := user.Email
		if dest == "" {
			dest = identifier
		}

		return ChannelEmail, d.email.SendOTPEmail(ctx, dest, code, minutes)
	default:
		slog.WarnContext(ctx, "identifier is neither a phone number nor an email", "user_id", user.ID)

		return "", false
	}
}
