package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// NICConfig configures the NIC gateway backend.
type NICConfig struct {
	// GatewayURL is the NIC SMS endpoint.
	GatewayURL string `json:"gatewayUrl"`
	// Username is the NIC account username.
	Username string `json:"username"`
	// Password is the NIC account pin.
	Password string `json:"password"`
	// SenderID is the registered sender header.
	SenderID string `json:"senderId"`
	// ServiceType selects the NIC sms service type (e.g. "otpmsg").
	ServiceType string `json:"serviceType"`
	// Templates lists the named message bodies.
	Templates []Template `json:"messageTypes"`
}

// NIC sends codes through the NIC government SMS gateway.
type NIC struct {
	cfg       NICConfig
	templates map[string]Template
	client    *http.Client
}

// NewNIC constructs the NIC backend.
func NewNIC(cfg NICConfig, client *http.Client) (*NIC, error) {
	if cfg.GatewayURL == "" {
		return nil, ErrGatewayURLRequired
	}

	return &NIC{
		cfg:       cfg,
		templates: templateByName(cfg.Templates),
		client:    client,
	}, nil
}

// Provider returns the driver name.
func (n *NIC) Provider() string { return DriverNIC }

// Send delivers the code as a JSON POST; success is exactly HTTP 200.
func (n *NIC) Send(ctx context.Context, destination, code, ttl string) bool {
	tmpl, ok := n.templates[MessageTypeOTP]
	if !ok {
		slog.ErrorContext(ctx, "sms message type is not configured", "provider", n.Provider(), "type", MessageTypeOTP)
		return false
	}

	if anyBlank(n.cfg.Username, n.cfg.Password, n.cfg.SenderID, n.cfg.ServiceType,
		tmpl.Message, tmpl.TemplateID, destination) {
		slog.ErrorContext(ctx, "sms mandatory parameters are empty", "provider", n.Provider())
		return false
	}

	payload := map[string]string{
		"username":       n.cfg.Username,
		"password":       n.cfg.Password,
		"senderid":       n.cfg.SenderID,
		"smsservicetype": n.cfg.ServiceType,
		"mobileno":       stripPlus(destination),
		"content":        renderTemplate(tmpl.Message, code, ttl),
		"templateid":     tmpl.TemplateID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "sms payload encode failed", "provider", n.Provider(), "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "sms request build failed", "provider", n.Provider(), "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "sms send failed", "provider", n.Provider(), "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "sms gateway rejected send", "provider", n.Provider(), "status", resp.StatusCode)
		return false
	}

	return true
}
