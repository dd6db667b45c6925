package draft

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed encrypts values with XChaCha20-Poly1305 before handing them to the
// wrapped store. Stored values are base64url(nonce || ciphertext).
type Sealed struct {
	inner Store
	aead  cipher.AEAD
}

var _ Store = (*Sealed)(nil)

// NewSealed wraps inner with a 32-byte key.
func NewSealed(inner Store, key []byte) (*Sealed, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

// ParseKey decodes a hex encoded 32-byte key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode draft key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("draft key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return key, nil
}

// NewKey returns a random 32-byte key.
func NewKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *Sealed) Read(ctx context.Context, key string) (string, bool, error) {
	enc, ok, err := s.inner.Read(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	data, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, ErrCorrupt)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", false, fmt.Errorf("read %s: %w", key, ErrCorrupt)
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	// key as additional data binds a value to the slot it was written to
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, ErrCorrupt)
	}
	return string(plain), true, nil
}

func (s *Sealed) Write(ctx context.Context, key, value string) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Write(ctx, key, base64.RawURLEncoding.EncodeToString(sealed))
}

func (s *Sealed) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}
