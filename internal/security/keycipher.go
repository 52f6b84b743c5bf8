package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecryptFailed is returned when a stored credential cannot be opened,
// typically because the server encryption key changed or the record was
// corrupted. Callers surface this as "reconfigure your key", not a 500.
var ErrDecryptFailed = errors.New("failed to decrypt stored credential")

// KeyCipher seals and opens per-user provider API keys with AES-GCM using a
// key derived from the server-held encryption secret.
type KeyCipher struct {
	aead cipher.AEAD
}

// NewKeyCipher derives a 256-bit key from the configured secret and prepares
// the AEAD. The secret itself can be any non-empty string.
func NewKeyCipher(secret string) (*KeyCipher, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is required")
	}

	derived := sha256.Sum256([]byte("workout-app.provider-key.v1" + secret))
	block, err := aes.NewCipher(derived[:])
	if err != nil {
		return nil, fmt.Errorf("init provider key cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init provider key aead: %w", err)
	}
	return &KeyCipher{aead: aead}, nil
}

// Seal encrypts a plaintext API key for storage. Output is base64 with the
// random nonce prepended.
func (c *KeyCipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("cannot seal an empty credential")
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	payload := append(nonce, ciphertext...)
	return base64.StdEncoding.EncodeToString(payload), nil
}

// Open decrypts a stored credential. Any tampering, truncation or key
// mismatch yields ErrDecryptFailed.
func (c *KeyCipher) Open(sealed string) (string, error) {
	payload, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrDecryptFailed
	}

	nonceSize := c.aead.NonceSize()
	if len(payload) <= nonceSize {
		return "", ErrDecryptFailed
	}

	plaintext, err := c.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
