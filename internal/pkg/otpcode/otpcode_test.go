package otpcode

import (
	"testing"
	"time"
)

func TestIssue(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("DefaultLength", func(t *testing.T) {
		// Act
		iss, err := Issue(0, 0, now)

		// Assert
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if len(iss.Code) != DefaultDigits {
			t.Fatalf("expected %d digits, got %q", DefaultDigits, iss.Code)
		}
		for _, r := range iss.Code {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric code, got %q", iss.Code)
			}
		}
		if iss.ExpiresAt != now.Add(DefaultTTL).UnixMilli() {
			t.Fatalf("expected default ttl expiry, got %d", iss.ExpiresAt)
		}
	})

	t.Run("CustomLengthAndTTL", func(t *testing.T) {
		// Act
		iss, err := Issue(8, 120*time.Second, now)

		// Assert
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if len(iss.Code) != 8 {
			t.Fatalf("expected 8 digits, got %q", iss.Code)
		}
		if iss.ExpiresAt != now.Add(120*time.Second).UnixMilli() {
			t.Fatalf("expected 120s expiry, got %d", iss.ExpiresAt)
		}
	})

	t.Run("OutOfRangeLengthFallsBack", func(t *testing.T) {
		// Act
		iss, err := Issue(99, time.Minute, now)

		// Assert
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if len(iss.Code) != DefaultDigits {
			t.Fatalf("expected fallback to %d digits, got %q", DefaultDigits, iss.Code)
		}
	})
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	future := now.Add(time.Minute).UnixMilli()
	past := now.Add(-time.Minute).UnixMilli()

	t.Run("Valid", func(t *testing.T) {
		if got := Classify("123456", "123456", future, now); got != StatusValid {
			t.Fatalf("expected valid, got %v", got)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		if got := Classify("654321", "123456", future, now); got != StatusInvalid {
			t.Fatalf("expected invalid, got %v", got)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		if got := Classify("123456", "123456", past, now); got != StatusExpired {
			t.Fatalf("expected expired, got %v", got)
		}
	})

	t.Run("WrongAndExpiredIsInvalid", func(t *testing.T) {
		// A non-matching code never reports expiry.
		if got := Classify("654321", "123456", past, now); got != StatusInvalid {
			t.Fatalf("expected invalid, got %v", got)
		}
	})

	t.Run("CaseInsensitiveMatch", func(t *testing.T) {
		if got := Classify("AB12cd", "ab12CD", future, now); got != StatusValid {
			t.Fatalf("expected valid, got %v", got)
		}
	})

	t.Run("EmptyIssuedIsInvalid", func(t *testing.T) {
		if got := Classify("", "", future, now); got != StatusInvalid {
			t.Fatalf("expected invalid, got %v", got)
		}
	})
}
