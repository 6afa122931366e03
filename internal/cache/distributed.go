package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// Distributed is a Store shared between processes through Valkey. Reads use
// server-assisted client-side caching, so a value written or removed by one
// process is seen by the others without a round trip on every lookup.
type Distributed[T any] struct {
	client    valkey.Client
	prefix    string
	retention time.Duration
	sealer    Sealer
}

// NewDistributed creates a store writing under prefix. A nil sealer stores
// values as plaintext JSON.
func NewDistributed[T any](client valkey.Client, prefix string, retention time.Duration, sealer Sealer) *Distributed[T] {
	if sealer == nil {
		sealer = PlaintextSealer{}
	}

	return &Distributed[T]{
		client:    client,
		prefix:    prefix,
		retention: retention,
		sealer:    sealer,
	}
}

func (d *Distributed[T]) storageKey(key string) string {
	return d.prefix + d.sealer.StorageKey(key)
}

// Get returns the stored value. A value that cannot be opened is removed on a
// best-effort basis and reported as an error.
func (d *Distributed[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	storageKey := d.storageKey(key)

	result := d.client.DoCache(ctx, d.client.B().Get().Key(storageKey).Cache(), d.retention)
	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("failed to read stored value: %w", err)
	}

	raw, err := result.ToString()
	if err != nil {
		return zero, false, fmt.Errorf("failed to read stored value: %w", err)
	}

	data, err := d.sealer.Open(raw, key)
	if err != nil {
		_ = d.client.Do(ctx, d.client.B().Del().Key(storageKey).Build()).Error()
		return zero, false, fmt.Errorf("stored value for %q could not be opened: %w", key, err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, false, fmt.Errorf("failed to decode stored value: %w", err)
	}

	return value, true, nil
}

func (d *Distributed[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	sealed, err := d.sealer.Seal(data, key)
	if err != nil {
		return err
	}

	cmd := d.client.B().Set().
		Key(d.storageKey(key)).
		Value(sealed).
		ExSeconds(int64(d.retention.Seconds())).
		Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to write stored value: %w", err)
	}

	return nil
}

func (d *Distributed[T]) Invalidate(ctx context.Context, key string) error {
	cmd := d.client.B().Del().Key(d.storageKey(key)).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to remove stored value: %w", err)
	}
	return nil
}

func (d *Distributed[T]) Close() error {
	if err := d.sealer.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing credential sealer")
	}
	d.client.Close()
	return nil
}
