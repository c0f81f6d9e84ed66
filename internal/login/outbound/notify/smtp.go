package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"github.com/wiratama/otplogin/internal/pkg/mail"
	"go.opentelemetry.io/otel/trace"
)

// SMTPConfig configures direct SMTP delivery.
type SMTPConfig struct {
	From    string
	Subject string
}

// SMTPSender delivers OTP emails straight over SMTP instead of going
// through the notification service.
type SMTPSender struct {
	cfg    SMTPConfig
	mailer mail.Mail
	ins    instrument.Instrumentation
}

func NewSMTPSender(cfg SMTPConfig, mailer mail.Mail, ins instrument.Instrumentation) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		mailer: mailer,
		ins:    ins,
	}
}

func (s *SMTPSender) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("login.outbound.notify").Start(ctx, name)
}

func (s *SMTPSender) SendOTPEmail(ctx context.Context, destination, code, ttl string) bool {
	ctx, span := s.startSpan(ctx, "SendOTPEmail")
	defer span.End()

	msg := mail.Message{
		From:     s.cfg.From,
		To:       []string{destination},
		Subject:  s.cfg.Subject,
		TextBody: fmt.Sprintf("Your verification code is %s. It expires in %s minutes.", code, ttl),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "smtp email send failed", "error", err)
		return false
	}

	return true
}
