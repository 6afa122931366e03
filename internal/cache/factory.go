package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/dynamic360/partnercenter-bridge/internal/encryption"
	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// NewStore builds the Store described by cfg, wrapped with instrumentation.
// Values are retained for at most retention; maxEntries bounds the in-memory
// store only.
func NewStore[T any](ctx context.Context, cfg config.StoreConfig, retention time.Duration, maxEntries int) (Store[T], error) {
	switch cfg.Type {
	case "", "memory":
		log.Info().Str("store_type", "memory").Msg("initializing in-memory credential store")

		memory, err := NewMemory[T](retention, maxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory store: %w", err)
		}
		return NewInstrumented[T](memory, "memory"), nil

	case "valkey":
		log.Info().
			Str("store_type", "valkey").
			Str("address", cfg.Valkey.Address).
			Bool("tls", cfg.Valkey.TLS).
			Bool("encrypted", cfg.Encryption.Enabled).
			Msg("initializing shared credential store")

		if cfg.Valkey.Address == "" {
			return nil, fmt.Errorf("valkey address is required for a valkey credential store")
		}

		client, err := valkey.NewClient(valkeyOptions(cfg.Valkey))
		if err != nil {
			return nil, fmt.Errorf("failed to create valkey client: %w", err)
		}

		var sealer Sealer = PlaintextSealer{}
		if cfg.Encryption.Enabled {
			aead, err := encryption.Open(ctx, cfg.Encryption)
			if err != nil {
				client.Close()
				return nil, fmt.Errorf("initializing credential encryption: %w", err)
			}
			sealer = NewAEADSealer(aead)
		}

		distributed := NewDistributed[T](client, cfg.Valkey.KeyPrefix, retention, sealer)
		return NewInstrumented[T](distributed, "valkey"), nil

	default:
		return nil, fmt.Errorf("invalid credential store type %q: must be one of memory or valkey", cfg.Type)
	}
}

func valkeyOptions(cfg config.ValkeyConfig) valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress: []string{cfg.Address},
		Username:    cfg.Username,
		Password:    cfg.Password,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return opts
}
