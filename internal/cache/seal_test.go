package cache

import (
	"errors"
	"strings"
	"testing"

	"github.com/dynamic360/partnercenter-bridge/internal/encryption"
	"github.com/dynamic360/partnercenter-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSealer(t *testing.T) *AEADSealer {
	t.Helper()

	a, err := encryption.FromKeysetFile(testhelpers.WriteTestKeyset(t))
	require.NoError(t, err)

	return NewAEADSealer(a)
}

func TestPlaintextSealer(t *testing.T) {
	s := PlaintextSealer{}

	sealed, err := s.Seal([]byte(`{"token":"abc"}`), "scope")
	require.NoError(t, err)
	assert.Equal(t, `{"token":"abc"}`, sealed)

	opened, err := s.Open(sealed, "scope")
	require.NoError(t, err)
	assert.Equal(t, `{"token":"abc"}`, string(opened))

	assert.Equal(t, "scope", s.StorageKey("scope"))
	assert.NoError(t, s.Close())
}

func TestAEADSealer_RoundTrip(t *testing.T) {
	s := testSealer(t)

	sealed, err := s.Seal([]byte(`{"token":"abc"}`), "https://api.partnercenter.microsoft.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedValuePrefix))
	assert.NotContains(t, sealed, "abc")

	opened, err := s.Open(sealed, "https://api.partnercenter.microsoft.com")
	require.NoError(t, err)
	assert.Equal(t, `{"token":"abc"}`, string(opened))
}

func TestAEADSealer_OpenFailures(t *testing.T) {
	s := testSealer(t)

	sealed, err := s.Seal([]byte("value"), "key-a")
	require.NoError(t, err)

	cases := []struct {
		name     string
		value    string
		key      string
		errorMsg string
	}{
		{name: "plaintext value", value: `{"token":"abc"}`, key: "key-a", errorMsg: "is not sealed"},
		{name: "bad encoding", value: sealedValuePrefix + "!!!", key: "key-a", errorMsg: "decoding sealed value"},
		{name: "different key", value: sealed, key: "key-b", errorMsg: "opening sealed value"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Open(tc.value, tc.key)
			assert.ErrorContains(t, err, tc.errorMsg)
		})
	}
}

func TestAEADSealer_StorageKey(t *testing.T) {
	s := NewAEADSealer(nil)

	assert.Equal(t, "sealed:scope", s.StorageKey("scope"))
	assert.Equal(t, "sealed:", s.StorageKey(""))
}

func TestAEADSealer_Close(t *testing.T) {
	t.Run("plain AEAD", func(t *testing.T) {
		assert.NoError(t, testSealer(t).Close())
	})

	t.Run("closable AEAD", func(t *testing.T) {
		closeErr := errors.New("close failed")
		s := NewAEADSealer(&closableAEAD{err: closeErr})

		assert.ErrorIs(t, s.Close(), closeErr)
	})
}

type closableAEAD struct {
	err error
}

func (c *closableAEAD) Encrypt(plaintext, _ []byte) ([]byte, error) { return plaintext, nil }
func (c *closableAEAD) Decrypt(ciphertext, _ []byte) ([]byte, error) { return ciphertext, nil }
func (c *closableAEAD) Close() error                                 { return c.err }
