package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Sealing algorithms. The tag byte prefixes every sealed value.
const (
	SealAESGCM   = "aes-256-gcm"
	SealChaCha20 = "chacha20-poly1305"

	tagAESGCM   byte = 1
	tagChaCha20 byte = 2

	// MinSealSecretLength is the shortest accepted sealing secret.
	MinSealSecretLength = 16

	sealKeySize = 32
)

// Sealing errors.
var (
	ErrSealSecretTooShort = errors.New("storage: seal secret must be at least 16 bytes")
	ErrSealedTooShort     = errors.New("storage: sealed value too short")
	ErrSealAlgorithm      = errors.New("storage: sealed with a different algorithm")
)

// Sealer encrypts values at rest with an AEAD keyed from a secret.
//
// A sealed value is tag || nonce || ciphertext. Opening with the wrong
// key, algorithm or additional data fails.
type Sealer struct {
	aead cipher.AEAD
	algo string
	tag  byte
}

// NewSealer derives a 256-bit key from secret with HKDF-SHA256, bound to
// info, and picks AES-GCM where the CPU accelerates it and
// ChaCha20-Poly1305 elsewhere.
func NewSealer(secret []byte, info string) (*Sealer, error) {
	algo := SealChaCha20
	switch runtime.GOARCH {
	case "amd64", "arm64":
		algo = SealAESGCM
	}
	return NewSealerWith(secret, info, algo)
}

// NewSealerWith is NewSealer with a fixed algorithm.
func NewSealerWith(secret []byte, info, algo string) (*Sealer, error) {
	key, err := deriveSealKey(secret, info)
	if err != nil {
		return nil, err
	}

	s := &Sealer{algo: algo}
	switch algo {
	case SealAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		if s.aead, err = cipher.NewGCM(block); err != nil {
			return nil, err
		}
		s.tag = tagAESGCM
	case SealChaCha20:
		if s.aead, err = chacha20poly1305.New(key); err != nil {
			return nil, err
		}
		s.tag = tagChaCha20
	default:
		return nil, fmt.Errorf("storage: unknown seal algorithm %q", algo)
	}
	return s, nil
}

func deriveSealKey(secret []byte, info string) ([]byte, error) {
	if len(secret) < MinSealSecretLength {
		return nil, ErrSealSecretTooShort
	}
	key := make([]byte, sealKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("storage: derive seal key: %w", err)
	}
	return key, nil
}

// Algorithm returns the algorithm name.
func (s *Sealer) Algorithm() string {
	return s.algo
}

// Seal encrypts plaintext, authenticating aad with it.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	out := make([]byte, 1+ns, 1+ns+len(plaintext)+s.aead.Overhead())
	out[0] = s.tag
	if _, err := io.ReadFull(rand.Reader, out[1:]); err != nil {
		return nil, err
	}
	return s.aead.Seal(out, out[1:], plaintext, aad), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < 1+ns+s.aead.Overhead() {
		return nil, ErrSealedTooShort
	}
	if sealed[0] != s.tag {
		return nil, ErrSealAlgorithm
	}
	return s.aead.Open(nil, sealed[1:1+ns], sealed[1+ns:], aad)
}
