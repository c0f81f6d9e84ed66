package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	// DefaultDigits is the code length used when none is configured.
	DefaultDigits = 6
	// DefaultTTL is the code lifetime used when none is configured.
	DefaultTTL = 300 * time.Second

	minDigits = 4
	maxDigits = 10
)

// Status is the outcome of checking a submitted code.
type Status int

const (
	// StatusValid means the code matches and has not expired.
	StatusValid Status = iota
	// StatusInvalid means the code does not match the issued one.
	StatusInvalid
	// StatusExpired means the code matches but its lifetime has passed.
	StatusExpired
)

// String returns a readable name for logging.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Issuance is a freshly generated code with its absolute expiry.
type Issuance struct {
	// Code is the digit string to deliver to the user.
	Code string
	// ExpiresAt is the expiry instant in Unix milliseconds.
	ExpiresAt int64
}

// Issue generates a random numeric code of the given length that expires ttl
// from now. Lengths outside the supported range fall back to DefaultDigits,
// and a non-positive ttl falls back to DefaultTTL.
func Issue(digits int, ttl time.Duration, now time.Time) (Issuance, error) {
	if digits < minDigits || digits > maxDigits {
		digits = DefaultDigits
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return Issuance{}, fmt.Errorf("otpcode: generate failed: %w", err)
	}

	return Issuance{
		Code:      fmt.Sprintf("%0*d", digits, n),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}, nil
}

// Classify compares a submitted code against the issued one.
//
// The comparison ignores case to stay lenient with clients that transform
// input; codes are numeric so this only matters for garbage submissions.
// Expiry is only reported for codes that actually match, so a guesser learns
// nothing about the stored code's age.
func Classify(entered, issued string, expiresAt int64, now time.Time) Status {
	if issued == "" || !strings.EqualFold(entered, issued) {
		return StatusInvalid
	}
	if now.UnixMilli() > expiresAt {
		return StatusExpired
	}
	return StatusValid
}
