package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the notification service client.
type Config struct {
	// BaseURL is the notification service root.
	BaseURL string
	// Path is the send-notification endpoint path.
	Path string
	// Authorization is sent as the Authorization header.
	Authorization string
	// Subject is the email subject line.
	Subject string
	// RealmName labels the issuing realm in the template.
	RealmName string
	// TemplateType selects the notification service email template.
	TemplateType string
	// Body is the template body marker.
	Body string
}

// Client delivers OTP emails through the external notification service.
type Client struct {
	cfg    Config
	client *http.Client
	ins    instrument.Instrumentation
}

func NewClient(cfg Config, client *http.Client, ins instrument.Instrumentation) *Client {
	return &Client{
		cfg:    cfg,
		client: client,
		ins:    ins,
	}
}

type otpRequest struct {
	RecipientEmails   []string `json:"recipientEmails"`
	Subject           string   `json:"subject"`
	RealmName         string   `json:"realmName"`
	EmailTemplateType string   `json:"emailTemplateType"`
	Body              string   `json:"body"`
	OTP               string   `json:"otp"`
	TTL               string   `json:"ttl"`
}

type payload struct {
	Request otpRequest `json:"request"`
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("login.outbound.notify").Start(ctx, name)
}

// SendOTPEmail posts the code to the notification service; ttl is minutes.
// Only a clean HTTP 200 counts as delivered.
func (c *Client) SendOTPEmail(ctx context.Context, destination, code, ttl string) bool {
	ctx, span := c.startSpan(ctx, "SendOTPEmail")
	defer span.End()

	if c.cfg.BaseURL == "" || c.cfg.Authorization == "" {
		slog.ErrorContext(ctx, "email notification service is not configured")
		return false
	}

	body, err := json.Marshal(payload{Request: otpRequest{
		RecipientEmails:   []string{destination},
		Subject:           c.cfg.Subject,
		RealmName:         c.cfg.RealmName,
		EmailTemplateType: c.cfg.TemplateType,
		Body:              c.cfg.Body,
		OTP:               code,
		TTL:               ttl,
	}})
	if err != nil {
		slog.ErrorContext(ctx, "email payload encode failed", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.Path, bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "email request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.cfg.Authorization)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "email send failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "notification service rejected email", "status", resp.StatusCode)
		return false
	}

	return true
}
