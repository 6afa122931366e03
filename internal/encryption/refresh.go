package encryption

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/tink-crypto/tink-go/v2/tink"
)

type loader func(ctx context.Context) (tink.AEAD, error)

// Refreshing is a tink.AEAD that reloads its keyset on an interval, so a
// rotated keyset is picked up without a restart. A failed reload keeps the
// current keyset.
type Refreshing struct {
	mu     sync.RWMutex
	aead   tink.AEAD
	load   loader
	stopCh chan struct{}
	doneCh chan struct{}
}

// Open builds the AEAD described by cfg. A keyset file takes precedence over
// a KMS-protected keyset.
func Open(ctx context.Context, cfg config.StoreEncryptionConfig) (*Refreshing, error) {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		return nil, errors.New("keyset refresh interval must be positive")
	}

	if cfg.KeysetFile != "" {
		return newRefreshing(ctx, func(context.Context) (tink.AEAD, error) {
			return FromKeysetFile(cfg.KeysetFile)
		}, interval)
	}

	return newRefreshing(ctx, func(ctx context.Context) (tink.AEAD, error) {
		return FromKMS(ctx, cfg.KeysetURI, cfg.KMSEnvelopeKeyURI)
	}, interval)
}

// newRefreshing loads the initial keyset synchronously and starts the refresh
// goroutine only if that succeeds.
func newRefreshing(ctx context.Context, load loader, interval time.Duration) (*Refreshing, error) {
	initial, err := load(ctx)
	if err != nil {
		return nil, err
	}

	r := &Refreshing{
		aead:   initial,
		load:   load,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go r.refreshLoop(context.WithoutCancel(ctx), interval)

	return r, nil
}

func (r *Refreshing) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.aead.Encrypt(plaintext, associatedData)
}

func (r *Refreshing) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.aead.Decrypt(ciphertext, associatedData)
}

// Close stops the refresh goroutine and waits for it to exit.
func (r *Refreshing) Close() error {
	close(r.stopCh)
	<-r.doneCh
	return nil
}

func (r *Refreshing) refreshLoop(ctx context.Context, interval time.Duration) {
	defer close(r.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refreshing) refresh(ctx context.Context) {
	next, err := r.load(ctx)
	if err != nil {
		log.Warn().
			Err(err).
			Msg("credential store keyset refresh failed, continuing with current keyset")
		return
	}

	r.mu.Lock()
	r.aead = next
	r.mu.Unlock()

	log.Debug().Msg("credential store keyset refreshed")
}
