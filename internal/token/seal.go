package token

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealOpen is returned for any cookie value that does not decrypt
// and authenticate: forged, tampered, truncated, or sealed under a
// different key. Callers treat all of these as "no auth cookie".
var ErrSealOpen = errors.New("token: cannot open sealed value")

// Sealer encrypts token strings into opaque cookie values. The key is
// derived from the server secret, so tampering with a cookie fails
// authentication on Open rather than producing a parseable token.
type Sealer struct {
	aead cipher.AEAD
}

func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("token: empty sealer secret")
	}
	key := sha256.Sum256([]byte(secret))
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("token: new sealer: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

func (s *Sealer) Seal(value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("token: seal nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < s.aead.NonceSize() {
		return "", ErrSealOpen
	}
	plain, err := s.aead.Open(nil, raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():], nil)
	if err != nil {
		return "", ErrSealOpen
	}
	return string(plain), nil
}
