package mq

import (
	"context"
	"encoding/json"

	"github.com/wiratama/otplogin/internal/login/usecase"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"github.com/wiratama/otplogin/internal/pkg/messaging"
	"github.com/wiratama/otplogin/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishLoginOTPDispatched(ctx context.Context, msg usecase.LoginOTPDispatchedEvent) error {
	ctx, span := m.ins.Tracer("login.outbound.mq").Start(ctx, "PublishLoginOTPDispatched")
	defer span.End()

	body, err := json.Marshal(event.LoginOTPDispatchedMessage{
		UserID:     msg.UserID,
		Identifier: msg.Identifier,
		Channel:    msg.Channel,
		Resend:     msg.Resend,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.LoginOTPDispatchedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishLoginSucceeded(ctx context.Context, msg usecase.LoginSucceededEvent) error {
	ctx, span := m.ins.Tracer("login.outbound.mq").Start(ctx, "PublishLoginSucceeded")
	defer span.End()

	body, err := json.Marshal(event.LoginSucceededMessage{
		UserID:     msg.UserID,
		Identifier: msg.Identifier,
		Method:     msg.Method,
		RememberMe: msg.RememberMe,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.LoginSucceededDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
