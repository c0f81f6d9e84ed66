// Package otpcode issues and checks short-lived numeric one-time passwords.
//
// Codes are random digit strings with an absolute expiry, not TOTP: the code a
// user receives over SMS or email is the one stored against their session, and
// classification distinguishes a wrong code from a correct-but-late one.
package otpcode
