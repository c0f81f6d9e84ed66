// Package passcrypt implements the password transport cipher shared with the
// login page.
//
// The browser encrypts the password field with AES-128-CBC before submitting
// the form. The key is a per-session 16 character string minted by the server
// and handed to the page, and the IV travels base64 encoded alongside the
// ciphertext. This is transport obfuscation on top of TLS, not a substitute
// for it; verification against the stored credential still uses bcrypt.
package passcrypt
