package smsgateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DriverNIC selects the NIC gateway backend.
	DriverNIC = "nic"
	// DriverAmnex selects the Amnex gateway backend.
	DriverAmnex = "amnex"
	// DriverNetCore selects the NetCore gateway backend.
	DriverNetCore = "netcore"
	// DriverFast2SMS selects the Fast2SMS gateway backend.
	DriverFast2SMS = "fast2sms"

	// MessageTypeOTP is the logical template name used for login codes.
	MessageTypeOTP = "otp"
)

var (
	// ErrUnknownDriver indicates an unsupported SMS driver.
	ErrUnknownDriver = errors.New("smsgateway: unknown driver")
	// ErrGatewayURLRequired is returned when a backend is built without a URL.
	ErrGatewayURLRequired = errors.New("smsgateway: gateway url is required")
)

// Sender dispatches a one-time password to a phone number.
//
// Send reports delivery as a plain boolean: vendors differ wildly in their
// response bodies, so anything other than a clean HTTP 200 collapses to false
// after logging. A false return must never have leaked the code anywhere.
type Sender interface {
	// Provider returns the backend's driver name for logging.
	Provider() string
	// Send delivers code to destination; ttl is the validity in minutes,
	// rendered into the message template.
	Send(ctx context.Context, destination, code, ttl string) bool
}

// Template is one named message body with its vendor-registered template ID.
type Template struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	TemplateID string `json:"templateId"`
}

// FactoryOptions groups config for supported SMS backends.
type FactoryOptions struct {
	// Client is the shared HTTP client; nil gets a default with a timeout.
	Client *http.Client

	// NIC provides configuration for the NIC driver.
	NIC NICConfig
	// Amnex provides configuration for the Amnex driver.
	Amnex AmnexConfig
	// NetCore provides configuration for the NetCore driver.
	NetCore NetCoreConfig
	// Fast2SMS provides configuration for the Fast2SMS driver.
	Fast2SMS Fast2SMSConfig
}

// NewFromDriver constructs a Sender implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Sender, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	switch strings.TrimSpace(driver) {
	case DriverNIC:
		return NewNIC(opts.NIC, client)
	case DriverAmnex:
		return NewAmnex(opts.Amnex, client)
	case DriverNetCore:
		return NewNetCore(opts.NetCore, client)
	case DriverFast2SMS:
		return NewFast2SMS(opts.Fast2SMS, client)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// templateByName indexes templates by name, first occurrence wins.
func templateByName(templates []Template) map[string]Template {
	m := make(map[string]Template, len(templates))
	for _, t := range templates {
		if _, ok := m[t.Name]; ok {
			continue
		}
		m[t.Name] = t
	}
	return m
}

// renderTemplate substitutes the code and ttl placeholders into the body.
func renderTemplate(body, code, ttl string) string {
	body = strings.ReplaceAll(body, "$otpKey", code)
	return strings.ReplaceAll(body, "$otpExpiry", ttl)
}

// stripPlus drops a single leading "+" from an international number.
func stripPlus(number string) string {
	return strings.TrimPrefix(number, "+")
}

func anyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
