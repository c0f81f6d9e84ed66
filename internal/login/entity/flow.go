package entity

// User is the account view the login flow works with. Accounts live in an
// external identity store; this is a read-only projection.
type User struct {
	ID       int64
	Username string
	Email    string
	Phone    string
	Password string // bcrypt hashed
	Enabled  bool
}

// PendingOTP is an issued code with its expiry. The two always travel
// together: a session either has a full issuance or none at all.
type PendingOTP struct {
	// Code is the issued digit string.
	Code string `json:"code"`
	// ExpiresAt is the expiry instant in Unix milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

// FlowSession holds the per-login-attempt state shared across flow steps.
type FlowSession struct {
	// SecretKey is the 16 character page key used for password transport.
	SecretKey string `json:"secret_key"`
	// AttemptedIdentifier is the username/email/phone the user submitted.
	AttemptedIdentifier string `json:"attempted_identifier"`
	// RedirectURI is where the frontend should land after success.
	RedirectURI string `json:"redirect_uri"`
	// RememberMe records the remember-me checkbox from the form.
	RememberMe bool `json:"remember_me"`
	// Pending is the outstanding OTP issuance, nil when none is in flight.
	Pending *PendingOTP `json:"pending,omitempty"`
}
