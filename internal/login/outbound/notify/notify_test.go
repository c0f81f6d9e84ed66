package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/wiratama/otplogin/internal/pkg/instrument"
)

type recordingTransport struct {
	status   int
	calls    int
	requests []*http.Request
	bodies   []string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.calls++
	rt.requests = append(rt.requests, req)

	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		rt.bodies = append(rt.bodies, string(b))
	}

	return &http.Response{
		StatusCode: rt.status,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
	}, nil
}

func newTestClient(status int) (*Client, *recordingTransport) {
	rt := &recordingTransport{status: status}
	c := NewClient(Config{
		BaseURL:       "https://notify.example.org",
		Path:          "/v1/notification/send",
		Authorization: "Bearer token",
		Subject:       "Your login code",
		RealmName:     "Example",
		TemplateType:  "otpEmail",
		Body:          "otp-body",
	}, &http.Client{Transport: rt}, instrument.NewNoop())

	return c, rt
}

func TestClient_SendOTPEmail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		c, rt := newTestClient(http.StatusOK)

		// Act
		ok := c.SendOTPEmail(context.Background(), "asha@example.org", "123456", "5")

		// Assert
		if !ok {
			t.Fatal("SendOTPEmail() = false, want true")
		}
		if rt.calls != 1 {
			t.Fatalf("calls = %d, want 1", rt.calls)
		}

		req := rt.requests[0]
		if req.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", req.Method)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}

		var payload struct {
			Request struct {
				RecipientEmails   []string `json:"recipientEmails"`
				Subject           string   `json:"subject"`
				RealmName         string   `json:"realmName"`
				EmailTemplateType string   `json:"emailTemplateType"`
				Body              string   `json:"body"`
				OTP               string   `json:"otp"`
				TTL               string   `json:"ttl"`
			} `json:"request"`
		}
		if err := json.Unmarshal([]byte(rt.bodies[0]), &payload); err != nil {
			t.Fatalf("payload decode error = %v", err)
		}
		if len(payload.Request.RecipientEmails) != 1 || payload.Request.RecipientEmails[0] != "asha@example.org" {
			t.Errorf("recipientEmails = %v", payload.Request.RecipientEmails)
		}
		if payload.Request.OTP != "123456" || payload.Request.TTL != "5" {
			t.Errorf("otp/ttl = %q/%q", payload.Request.OTP, payload.Request.TTL)
		}
		if payload.Request.EmailTemplateType != "otpEmail" {
			t.Errorf("emailTemplateType = %q", payload.Request.EmailTemplateType)
		}
	})

	t.Run("NonOKStatusIsFailure", func(t *testing.T) {
		// Arrange
		c, _ := newTestClient(http.StatusAccepted)

		// Act
		ok := c.SendOTPEmail(context.Background(), "asha@example.org", "123456", "5")

		// Assert
		if ok {
			t.Error("SendOTPEmail() = true, want false for non-200 status")
		}
	})

	t.Run("MissingConfigFailsWithoutNetworkCall", func(t *testing.T) {
		// Arrange
		rt := &recordingTransport{status: http.StatusOK}
		c := NewClient(Config{}, &http.Client{Transport: rt}, instrument.NewNoop())

		// Act
		ok := c.SendOTPEmail(context.Background(), "asha@example.org", "123456", "5")

		// Assert
		if ok {
			t.Error("SendOTPEmail() = true, want false")
		}
		if rt.calls != 0 {
			t.Errorf("calls = %d, want 0", rt.calls)
		}
	})
}
