package entity

import "regexp"

// PageFlag marks which step of the login flow a form submission targets.
type PageFlag string

const (
	// PageFlagRender is the absent/unknown flag; it renders the initial page.
	PageFlagRender PageFlag = ""
	// PageFlagLogin requests an OTP for the submitted identifier.
	PageFlagLogin PageFlag = "login"
	// PageFlagLoginWithPass submits a password credential.
	PageFlagLoginWithPass PageFlag = "loginWithPass"
	// PageFlagOTP submits an OTP answer.
	PageFlagOTP PageFlag = "otp"
	// PageFlagResend requests a fresh OTP for the stored identifier.
	PageFlagResend PageFlag = "resend"
)

// ParsePageFlag maps a raw form value to a PageFlag; anything unrecognized
// falls back to the initial render.
func ParsePageFlag(raw string) PageFlag {
	switch PageFlag(raw) {
	case PageFlagLogin, PageFlagLoginWithPass, PageFlagOTP, PageFlagResend:
		return PageFlag(raw)
	default:
		return PageFlagRender
	}
}

// IdentifierKind is the delivery channel implied by a login identifier.
type IdentifierKind int

const (
	// IdentifierUnknown means the identifier fits no channel; delivery fails
	// without contacting any backend.
	IdentifierUnknown IdentifierKind = iota
	// IdentifierPhone routes delivery over SMS.
	IdentifierPhone
	// IdentifierEmail routes delivery over email.
	IdentifierEmail
)

// String returns a readable name for logging.
func (k IdentifierKind) String() string {
	switch k {
	case IdentifierPhone:
		return "phone"
	case IdentifierEmail:
		return "email"
	default:
		return "unknown"
	}
}

var (
	reDigits = regexp.MustCompile(`^\d+$`)
	reEmail  = regexp.MustCompile(`^[_A-Za-z0-9-+]+(\.[_A-Za-z0-9-]+)*@[A-Za-z0-9-]+(\.[A-Za-z0-9]+)*(\.[A-Za-z]{2,})$`)
)

// ClassifyIdentifier decides the delivery channel for an identifier.
//
// A phone is exactly ten digits; nine or eleven digit strings are unknown, as
// is anything with separators or country prefixes. Email follows the usual
// local@domain shape with a TLD of at least two letters.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if reDigits.MatchString(identifier) && len(identifier) == 10 {
		return IdentifierPhone
	}
	if reEmail.MatchString(identifier) {
		return IdentifierEmail
	}
	return IdentifierUnknown
}
