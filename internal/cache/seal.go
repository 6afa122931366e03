package cache

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tink-crypto/tink-go/v2/tink"
)

const (
	// sealedValuePrefix marks values written by an AEADSealer.
	sealedValuePrefix = "pcb-sealed:"

	// sealedKeyPrefix keeps sealed entries apart from plaintext ones when
	// encryption is switched on for an existing store.
	sealedKeyPrefix = "sealed:"
)

// Sealer controls how values are protected before they leave the process.
type Sealer interface {
	// Seal protects plaintext for storage under key. The key is bound to the
	// result, so a sealed value cannot be replayed under another key.
	Seal(plaintext []byte, key string) (string, error)

	// Open reverses Seal. The key must match the one used to seal.
	Open(value string, key string) ([]byte, error)

	// StorageKey returns the key actually written to the store.
	StorageKey(key string) string

	Close() error
}

// PlaintextSealer stores values unchanged.
type PlaintextSealer struct{}

func (PlaintextSealer) Seal(plaintext []byte, _ string) (string, error) {
	return string(plaintext), nil
}

func (PlaintextSealer) Open(value string, _ string) ([]byte, error) {
	return []byte(value), nil
}

func (PlaintextSealer) StorageKey(key string) string {
	return key
}

func (PlaintextSealer) Close() error {
	return nil
}

// AEADSealer encrypts values with a Tink AEAD, using the key as associated
// data. Sealed values are base64 encoded and carry a marker prefix.
type AEADSealer struct {
	aead tink.AEAD
}

func NewAEADSealer(a tink.AEAD) *AEADSealer {
	return &AEADSealer{aead: a}
}

func (s *AEADSealer) Seal(plaintext []byte, key string) (string, error) {
	ciphertext, err := s.aead.Encrypt(plaintext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("sealing value: %w", err)
	}

	return sealedValuePrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *AEADSealer) Open(value string, key string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(value, sealedValuePrefix)
	if !ok {
		return nil, fmt.Errorf("stored value is not sealed: missing %q prefix", sealedValuePrefix)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding sealed value: %w", err)
	}

	plaintext, err := s.aead.Decrypt(ciphertext, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("opening sealed value: %w", err)
	}

	return plaintext, nil
}

func (s *AEADSealer) StorageKey(key string) string {
	return sealedKeyPrefix + key
}

// Close releases the AEAD when it holds resources, such as a refresh loop.
func (s *AEADSealer) Close() error {
	if closer, ok := s.aead.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
