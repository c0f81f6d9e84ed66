package passcrypt

import (
	"strings"
	"testing"
	"time"
)

func TestNewKey(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	// Act
	key := NewKey(now)

	// Assert
	if len(key) != KeyLen {
		t.Fatalf("expected key length %d, got %d", KeyLen, len(key))
	}
	if !strings.HasPrefix(key, "20260314092653") {
		t.Fatalf("expected key to start with timestamp, got %q", key)
	}
}

func TestDecrypt(t *testing.T) {
	key := NewKey(time.Now())

	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		ciphertext, iv, err := Encrypt("s3cret-Passw0rd!", key)
		if err != nil {
			t.Fatalf("encrypt failed: %v", err)
		}

		// Act
		plain, err := Decrypt(ciphertext, key, iv)

		// Assert
		if err != nil {
			t.Fatalf("decrypt failed: %v", err)
		}
		if plain != "s3cret-Passw0rd!" {
			t.Fatalf("expected round-tripped password, got %q", plain)
		}
	})

	t.Run("WrongKeyLength", func(t *testing.T) {
		// Arrange
		ciphertext, iv, err := Encrypt("password", key)
		if err != nil {
			t.Fatalf("encrypt failed: %v", err)
		}

		// Act
		_, err = Decrypt(ciphertext, "short-key", iv)

		// Assert
		if err != ErrInvalidKeyLength {
			t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
		}
	})

	t.Run("DifferentKey", func(t *testing.T) {
		// Arrange
		ciphertext, iv, err := Encrypt("password", key)
		if err != nil {
			t.Fatalf("encrypt failed: %v", err)
		}
		other := NewKey(time.Now().Add(time.Hour))

		// Act
		plain, err := Decrypt(ciphertext, other, iv)

		// Assert
		if err == nil && plain == "password" {
			t.Fatalf("expected decryption with a different key to not recover the plaintext")
		}
	})

	t.Run("CorruptedBase64", func(t *testing.T) {
		// Act
		_, err := Decrypt("%%%not-base64%%%", key, "also-not-base64")

		// Assert
		if err != ErrDecryptFailed {
			t.Fatalf("expected ErrDecryptFailed, got %v", err)
		}
	})

	t.Run("TruncatedCiphertext", func(t *testing.T) {
		// Act
		_, err := Decrypt("QUJD", key, "QUJD")

		// Assert
		if err != ErrDecryptFailed {
			t.Fatalf("expected ErrDecryptFailed, got %v", err)
		}
	})
}
