package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// AmnexConfig configures the Amnex gateway backend.
type AmnexConfig struct {
	// GatewayURL is the Amnex SMS endpoint.
	GatewayURL string `json:"gatewayUrl"`
	// CampaignName is the Amnex campaign identifier.
	CampaignName string `json:"campaignName"`
	// AuthKey is the Amnex account key.
	AuthKey string `json:"authKey"`
	// Sender is the registered sender header.
	Sender string `json:"sender"`
	// Route is the Amnex delivery route.
	Route string `json:"route"`
	// Templates lists the named message bodies.
	Templates []Template `json:"messageTypes"`
}

type amnexMessage struct {
	MsgData      string `json:"msgdata"`
	TemplateID   string `json:"Template_ID"`
	Coding       string `json:"coding"`
	FlashMessage int    `json:"flash_message"`
	ScheduleTime string `json:"scheduleTime"`
}

type amnexPayload struct {
	CampaignName string       `json:"campaign_name"`
	AuthKey      string       `json:"auth_key"`
	Receivers    string       `json:"receivers"`
	Sender       string       `json:"sender"`
	Route        string       `json:"route"`
	Message      amnexMessage `json:"message"`
}

// Amnex sends codes through the Amnex campaign gateway.
type Amnex struct {
	cfg       AmnexConfig
	templates map[string]Template
	client    *http.Client
}

// NewAmnex constructs the Amnex backend.
func NewAmnex(cfg AmnexConfig, client *http.Client) (*Amnex, error) {
	if cfg.GatewayURL == "" {
		return nil, ErrGatewayURLRequired
	}

	return &Amnex{
		cfg:       cfg,
		templates: templateByName(cfg.Templates),
		client:    client,
	}, nil
}

// Provider returns the driver name.
func (a *Amnex) Provider() string { return DriverAmnex }

// Send delivers the code as a JSON POST; success is exactly HTTP 200.
func (a *Amnex) Send(ctx context.Context, destination, code, ttl string) bool {
	tmpl, ok := a.templates[MessageTypeOTP]
	if !ok {
		slog.ErrorContext(ctx, "sms message type is not configured", "provider", a.Provider(), "type", MessageTypeOTP)
		return false
	}

	if anyBlank(a.cfg.CampaignName, a.cfg.AuthKey, a.cfg.Sender, a.cfg.Route,
		tmpl.Message, tmpl.TemplateID, destination) {
		slog.ErrorContext(ctx, "sms mandatory parameters are empty", "provider", a.Provider())
		return false
	}

	payload := amnexPayload{
		CampaignName: a.cfg.CampaignName,
		AuthKey:      a.cfg.AuthKey,
		Receivers:    stripPlus(destination),
		Sender:       a.cfg.Sender,
		Route:        a.cfg.Route,
		Message: amnexMessage{
			MsgData:      renderTemplate(tmpl.Message, code, ttl),
			TemplateID:   tmpl.TemplateID,
			Coding:       "1",
			FlashMessage: 1,
			ScheduleTime: "",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "sms payload encode failed", "provider", a.Provider(), "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "sms request build failed", "provider", a.Provider(), "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "sms send failed", "provider", a.Provider(), "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "sms gateway rejected send", "provider", a.Provider(), "status", resp.StatusCode)
		return false
	}

	return true
}
