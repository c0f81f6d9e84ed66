// Package notify sends OTP emails, either through the external
// notification service or directly over SMTP.
package notify
