package passcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	// KeyLen is the secret key length handed to the login page.
	KeyLen = 16

	randSuffixMax = 10000
)

var (
	// ErrInvalidKeyLength indicates the key is not exactly KeyLen bytes.
	ErrInvalidKeyLength = errors.New("passcrypt: invalid key length")
	// ErrDecryptFailed indicates decryption failure.
	ErrDecryptFailed = errors.New("passcrypt: decrypt failed")
	// ErrPlaintextEmpty indicates an empty plaintext input.
	ErrPlaintextEmpty = errors.New("passcrypt: plaintext is empty")
)

// NewKey mints a fresh page key from the given time: a compact timestamp plus
// a zero-padded random suffix, truncated to KeyLen characters.
func NewKey(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(randSuffixMax))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}

	key := now.Format("20060102150405") + fmt.Sprintf("%04d", suffix)
	return key[:KeyLen]
}

// Decrypt reverses the page-side AES-128-CBC encryption.
//
// Both the ciphertext and the IV arrive base64 encoded; the key is used as raw
// bytes. Any malformed input collapses into ErrDecryptFailed so callers cannot
// distinguish a bad key from tampered data.
func Decrypt(ciphertextB64, key, ivB64 string) (string, error) {
	if len(key) != KeyLen {
		return "", ErrInvalidKeyLength
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", ErrDecryptFailed
	}
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return "", ErrDecryptFailed
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", ErrDecryptFailed
	}
	if len(iv) != block.BlockSize() {
		return "", ErrDecryptFailed
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return "", ErrDecryptFailed
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = stripPKCS7(plain, block.BlockSize())
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plain), nil
}

// Encrypt performs the page-side encryption. It exists so the server half can
// be exercised against real ciphertexts; production traffic is encrypted by
// the browser.
func Encrypt(plaintext, key string) (ciphertextB64, ivB64 string, err error) {
	if len(key) != KeyLen {
		return "", "", ErrInvalidKeyLength
	}
	if plaintext == "" {
		return "", "", ErrPlaintextEmpty
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", "", fmt.Errorf("passcrypt: aes init failed: %w", err)
	}

	iv := make([]byte, block.BlockSize())
	if _, err := rand.Read(iv); err != nil {
		return "", "", fmt.Errorf("passcrypt: iv generation failed: %w", err)
	}

	padded := padPKCS7([]byte(plaintext), block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return base64.StdEncoding.EncodeToString(out), base64.StdEncoding.EncodeToString(iv), nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+pad)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(pad)
	}
	return padded
}

func stripPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrDecryptFailed
	}

	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, ErrDecryptFailed
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, ErrDecryptFailed
		}
	}
	return data[:len(data)-pad], nil
}
