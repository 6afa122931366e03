package encryption

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tink-crypto/tink-go/v2/tink"
)

func TestRefreshing_DelegatesToCurrentKeyset(t *testing.T) {
	r, err := newRefreshing(context.Background(), staticLoader(&passthroughAEAD{}), time.Hour)
	require.NoError(t, err)
	defer func() { assert.NoError(t, r.Close()) }()

	sealed, err := r.Encrypt([]byte("access-token"), []byte("scope"))
	require.NoError(t, err)

	opened, err := r.Decrypt(sealed, []byte("scope"))
	require.NoError(t, err)
	assert.Equal(t, "access-token", string(opened))
}

func TestRefreshing_InitialLoadFailure(t *testing.T) {
	loadErr := errors.New("kms unavailable")

	r, err := newRefreshing(context.Background(), failingLoader(loadErr), time.Hour)

	assert.Nil(t, r)
	assert.ErrorIs(t, err, loadErr)
}

func TestRefreshing_ReplacesKeyset(t *testing.T) {
	first := &passthroughAEAD{id: "first"}
	second := &passthroughAEAD{id: "second"}

	calls := atomic.Int32{}
	load := func(context.Context) (tink.AEAD, error) {
		if calls.Add(1) == 1 {
			return first, nil
		}
		return second, nil
	}

	r, err := newRefreshing(context.Background(), load, 10*time.Millisecond)
	require.NoError(t, err)
	defer func() { assert.NoError(t, r.Close()) }()

	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	r.mu.RLock()
	active := r.aead
	r.mu.RUnlock()
	assert.Same(t, second, active)
}

func TestRefreshing_FailedReloadKeepsKeyset(t *testing.T) {
	original := &passthroughAEAD{id: "original"}

	calls := atomic.Int32{}
	load := func(context.Context) (tink.AEAD, error) {
		if calls.Add(1) == 1 {
			return original, nil
		}
		return nil, errors.New("secret unavailable")
	}

	r, err := newRefreshing(context.Background(), load, 10*time.Millisecond)
	require.NoError(t, err)
	defer func() { assert.NoError(t, r.Close()) }()

	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	r.mu.RLock()
	active := r.aead
	r.mu.RUnlock()
	assert.Same(t, original, active)
}

func TestRefreshing_SurvivesCancelledStartupContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := atomic.Int32{}
	load := func(context.Context) (tink.AEAD, error) {
		calls.Add(1)
		return &passthroughAEAD{}, nil
	}

	r, err := newRefreshing(ctx, load, 10*time.Millisecond)
	require.NoError(t, err)
	defer func() { assert.NoError(t, r.Close()) }()

	cancel()

	require.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestRefreshing_CloseStopsRefresh(t *testing.T) {
	calls := atomic.Int32{}
	load := func(context.Context) (tink.AEAD, error) {
		calls.Add(1)
		return &passthroughAEAD{}, nil
	}

	r, err := newRefreshing(context.Background(), load, 10*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, r.Close())

	afterClose := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, afterClose, calls.Load(), "keyset should not be reloaded after Close")
}

func TestRefreshing_ConcurrentUse(t *testing.T) {
	r, err := newRefreshing(context.Background(), staticLoader(&passthroughAEAD{}), 5*time.Millisecond)
	require.NoError(t, err)
	defer func() { assert.NoError(t, r.Close()) }()

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			for range 50 {
				_, _ = r.Encrypt([]byte("data"), []byte("scope"))
				_, _ = r.Decrypt([]byte("data"), []byte("scope"))
			}
		})
	}
	wg.Wait()
}

// passthroughAEAD lets tests identify which instance is active.
type passthroughAEAD struct {
	id string
}

func (a *passthroughAEAD) Encrypt(plaintext, _ []byte) ([]byte, error) {
	return plaintext, nil
}

func (a *passthroughAEAD) Decrypt(ciphertext, _ []byte) ([]byte, error) {
	return ciphertext, nil
}

func staticLoader(a tink.AEAD) loader {
	return func(context.Context) (tink.AEAD, error) {
		return a, nil
	}
}

func failingLoader(err error) loader {
	return func(context.Context) (tink.AEAD, error) {
		return nil, err
	}
}
