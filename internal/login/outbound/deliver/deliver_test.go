package deliver

import (
	"context"
	"testing"
	"time"

	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
)

type fakeSMS struct {
	calls int
	dest  string
	ttl   string
	ok    bool
}

func (f *fakeSMS) Provider() string { return "fake" }

func (f *fakeSMS) Send(_ context.Context, destination, _, ttl string) bool {
	f.calls++
	f.dest = destination
	f.ttl = ttl

	return f.ok
}

type fakeEmail struct {
	calls int
	dest  string
	ok    bool
}

func (f *fakeEmail) SendOTPEmail(_ context.Context, destination, _, _ string) bool {
	f.calls++
	f.dest = destination

	return f.ok
}

func TestDeliverer_Deliver(t *testing.T) {
	user := entity.User{ID: 7, Email: "asha@example.org", Phone: "9876543210"}

	t.Run("PhoneIdentifierGoesOverSMS", func(t *testing.T) {
		// Arrange
		sms := &fakeSMS{ok: true}
		email := &fakeEmail{ok: true}
		d := New(sms, email, instrument.NewNoop())

		// Act
		channel, ok := d.Deliver(context.Background(), user, "9876543210", "123456", 5*time.Minute)

		// Assert
		if !ok || channel != ChannelSMS {
			t.Errorf("Deliver() = (%q, %v), want (%q, true)", channel, ok, ChannelSMS)
		}
		if sms.calls != 1 || email.calls != 0 {
			t.Errorf("calls sms=%d email=%d, want 1/0", sms.calls, email.calls)
		}
		if sms.ttl != "5" {
			t.Errorf("ttl = %q, want minutes string", sms.ttl)
		}
	})

	t.Run("EmailIdentifierGoesOverEmail", func(t *testing.T) {
		// Arrange
		sms := &fakeSMS{ok: true}
		email := &fakeEmail{ok: true}
		d := New(sms, email, instrument.NewNoop())

		// Act
		channel, ok := d.Deliver(context.Background(), user, "asha@example.org", "123456", 5*time.Minute)

		// Assert
		if !ok || channel != ChannelEmail {
			t.Errorf("Deliver() = (%q, %v), want (%q, true)", channel, ok, ChannelEmail)
		}
		if email.dest != "asha@example.org" {
			t.Errorf("dest = %q", email.dest)
		}
	})

	t.Run("UnknownIdentifierFailsWithoutBackendCall", func(t *testing.T) {
		// Arrange
		sms := &fakeSMS{ok: true}
		email := &fakeEmail{ok: true}
		d := New(sms, email, instrument.NewNoop())

		// Act
		channel, ok := d.Deliver(context.Background(), user, "12345", "123456", 5*time.Minute)

		// Assert
		if ok || channel != "" {
			t.Errorf("Deliver() = (%q, %v), want failure with no channel", channel, ok)
		}
		if sms.calls != 0 || email.calls != 0 {
			t.Errorf("calls sms=%d email=%d, want 0/0", sms.calls, email.calls)
		}
	})

	t.Run("BackendFailurePropagates", func(t *testing.T) {
		// Arrange
		sms := &fakeSMS{ok: false}
		d := New(sms, &fakeEmail{ok: true}, instrument.NewNoop())

		// Act
		channel, ok := d.Deliver(context.Background(), user, "9876543210", "123456", 5*time.Minute)

		// Assert
		if ok || channel != ChannelSMS {
			t.Errorf("Deliver() = (%q, %v), want (%q, false)", channel, ok, ChannelSMS)
		}
	})
}
