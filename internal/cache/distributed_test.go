package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistributed_StorageKey(t *testing.T) {
	cases := []struct {
		name     string
		prefix   string
		sealer   Sealer
		key      string
		expected string
	}{
		{name: "plaintext", prefix: "bridge:", key: "scope", expected: "bridge:scope"},
		{name: "sealed", prefix: "bridge:", sealer: NewAEADSealer(nil), key: "scope", expected: "bridge:sealed:scope"},
		{name: "no prefix", sealer: PlaintextSealer{}, key: "https://api.partnercenter.microsoft.com", expected: "https://api.partnercenter.microsoft.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDistributed[string](nil, tc.prefix, time.Minute, tc.sealer)
			assert.Equal(t, tc.expected, d.storageKey(tc.key))
		})
	}
}

func TestNewDistributed_DefaultsToPlaintext(t *testing.T) {
	d := NewDistributed[string](nil, "", time.Minute, nil)
	assert.Equal(t, PlaintextSealer{}, d.sealer)
}
