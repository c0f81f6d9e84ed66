package clock

import "time"

// Clocker abstracts time so flow logic and tests can control "now".
type Clocker interface {
	Now() time.Time
}

// SystemClock is the production clock backed by time.Now.
type SystemClock struct{}

// New returns a SystemClock reading the current system time.
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current system time.
func (*SystemClock) Now() time.Time {
	return time.Now()
}
