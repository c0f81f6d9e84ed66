package smsgateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// Fast2SMSConfig configures the Fast2SMS gateway backend.
type Fast2SMSConfig struct {
	// GatewayURL is the Fast2SMS endpoint.
	GatewayURL string `json:"gatewayUrl"`
	// Authorization is the Fast2SMS API key.
	Authorization string `json:"authorization"`
	// SenderID is the registered sender header.
	SenderID string `json:"senderId"`
	// Route is the Fast2SMS route (e.g. "v3").
	Route string `json:"route"`
	// Language is the message language (e.g. "english").
	Language string `json:"language"`
	// AllowList restricts delivery to the listed numbers. This backend is for
	// pre-production use; an empty list blocks every send.
	AllowList []string `json:"allowList"`
	// Templates lists the named message bodies.
	Templates []Template `json:"messageTypes"`
}

// Fast2SMS sends codes through the Fast2SMS API.
type Fast2SMS struct {
	cfg       Fast2SMSConfig
	templates map[string]Template
	allowed   map[string]struct{}
	client    *http.Client
}

// NewFast2SMS constructs the Fast2SMS backend.
func NewFast2SMS(cfg Fast2SMSConfig, client *http.Client) (*Fast2SMS, error) {
	if cfg.GatewayURL == "" {
		return nil, ErrGatewayURLRequired
	}

	allowed := make(map[string]struct{}, len(cfg.AllowList))
	for _, number := range cfg.AllowList {
		allowed[stripPlus(number)] = struct{}{}
	}

	return &Fast2SMS{
		cfg:       cfg,
		templates: templateByName(cfg.Templates),
		allowed:   allowed,
		client:    client,
	}, nil
}

// Provider returns the driver name.
func (f *Fast2SMS) Provider() string { return DriverFast2SMS }

// Send delivers the code as a GET request; success is exactly HTTP 200.
// Numbers outside the allow list are rejected before any network call.
func (f *Fast2SMS) Send(ctx context.Context, destination, code, ttl string) bool {
	tmpl, ok := f.templates[MessageTypeOTP]
	if !ok {
		slog.ErrorContext(ctx, "sms message type is not configured", "provider", f.Provider(), "type", MessageTypeOTP)
		return false
	}

	if anyBlank(f.cfg.Authorization, f.cfg.SenderID, f.cfg.Route, f.cfg.Language,
		tmpl.Message, destination) {
		slog.ErrorContext(ctx, "sms mandatory parameters are empty", "provider", f.Provider())
		return false
	}

	number := stripPlus(destination)
	if _, ok := f.allowed[number]; !ok {
		slog.WarnContext(ctx, "sms destination is not allow-listed", "provider", f.Provider())
		return false
	}

	query := url.Values{}
	query.Set("authorization", f.cfg.Authorization)
	query.Set("route", f.cfg.Route)
	query.Set("sender_id", f.cfg.SenderID)
	query.Set("message", renderTemplate(tmpl.Message, code, ttl))
	query.Set("language", f.cfg.Language)
	query.Set("flash", "0")
	query.Set("numbers", number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.GatewayURL+"?"+query.Encode(), nil)
	if err != nil {
		slog.ErrorContext(ctx, "sms request build failed", "provider", f.Provider(), "error", err)
		return false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "sms send failed", "provider", f.Provider(), "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "sms gateway rejected send", "provider", f.Provider(), "status", resp.StatusCode)
		return false
	}

	return true
}
