// Package hash verifies stored secrets against user input.
//
// The login flow only ever compares a decrypted password against a stored
// bcrypt hash; it never mints new hashes at runtime. Hash is still part of the
// interface so seeding tools and tests can produce fixtures.
package hash
