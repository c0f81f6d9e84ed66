package smsgateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// netCoreCountryPrefix is prepended to bare national numbers.
const netCoreCountryPrefix = "91"

// NetCoreConfig configures the NetCore gateway backend.
type NetCoreConfig struct {
	// GatewayURL is the NetCore SMS endpoint.
	GatewayURL string `json:"gatewayUrl"`
	// FeedID is the NetCore feed identifier.
	FeedID string `json:"feedId"`
	// Username is the NetCore account username.
	Username string `json:"username"`
	// Password is the NetCore account password.
	Password string `json:"password"`
	// Templates lists the named message bodies.
	Templates []Template `json:"messageTypes"`
}

// NetCore sends codes through the NetCore gateway.
type NetCore struct {
	cfg       NetCoreConfig
	templates map[string]Template
	client    *http.Client
}

// NewNetCore constructs the NetCore backend.
func NewNetCore(cfg NetCoreConfig, client *http.Client) (*NetCore, error) {
	if cfg.GatewayURL == "" {
		return nil, ErrGatewayURLRequired
	}

	return &NetCore{
		cfg:       cfg,
		templates: templateByName(cfg.Templates),
		client:    client,
	}, nil
}

// Provider returns the driver name.
func (n *NetCore) Provider() string { return DriverNetCore }

// Send delivers the code as a form-encoded POST; success is exactly HTTP 200.
func (n *NetCore) Send(ctx context.Context, destination, code, ttl string) bool {
	tmpl, ok := n.templates[MessageTypeOTP]
	if !ok {
		slog.ErrorContext(ctx, "sms message type is not configured", "provider", n.Provider(), "type", MessageTypeOTP)
		return false
	}

	if anyBlank(n.cfg.FeedID, n.cfg.Username, n.cfg.Password,
		tmpl.Message, tmpl.TemplateID, destination) {
		slog.ErrorContext(ctx, "sms mandatory parameters are empty", "provider", n.Provider())
		return false
	}

	form := url.Values{}
	form.Set("feedid", n.cfg.FeedID)
	form.Set("username", n.cfg.Username)
	form.Set("password", n.cfg.Password)
	form.Set("to", n.normalizeNumber(destination))
	form.Set("text", renderTemplate(tmpl.Message, code, ttl))
	form.Set("templateid", tmpl.TemplateID)
	form.Set("short", "0")
	form.Set("async", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		slog.ErrorContext(ctx, "sms request build failed", "provider", n.Provider(), "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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

// normalizeNumber strips a "+" and ensures the country prefix NetCore expects.
func (n *NetCore) normalizeNumber(number string) string {
	number = stripPlus(number)
	if !strings.HasPrefix(number, netCoreCountryPrefix) {
		number = netCoreCountryPrefix + number
	}
	return number
}
