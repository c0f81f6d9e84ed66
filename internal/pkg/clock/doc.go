// Package clock provides a replaceable time source.
//
// OTP expiry and secret-key generation depend on wall-clock time; injecting a
// Clocker lets tests move time forward deterministically.
package clock
