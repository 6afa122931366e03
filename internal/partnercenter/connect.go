package partnercenter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/dynamic360/partnercenter-bridge/internal/identity"
	"github.com/dynamic360/partnercenter-bridge/internal/secret"
)

// Connect resolves the client secret and assembles a Client backed by a
// credential cache kept in the store described by storeCfg. The caller owns
// the returned cache and should Close it on shutdown.
func Connect(ctx context.Context, cfg config.PartnerCenterConfig, storeCfg config.StoreConfig, httpClient *http.Client) (*Client, *identity.Cache, error) {
	clientSecret, err := secret.ClientSecret(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("client secret resolution failed: %w", err)
	}

	store, err := identity.NewStore(ctx, storeCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("credential store configuration failed: %w", err)
	}

	acquirer := identity.NewClientCredentials(cfg.ClientID, clientSecret, cfg.TokenURL(), cfg.Scope, httpClient)

	tokens, err := identity.New(acquirer, cfg.Scope,
		identity.WithSafetyMargin(cfg.TokenSafetyMargin),
		identity.WithAcquisitionTimeout(cfg.TokenAcquisitionTimeout),
		identity.WithStore(store),
	)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("credential cache configuration failed: %w", err)
	}

	var opts []Option
	if httpClient != nil {
		opts = append(opts, WithHTTPClient(httpClient))
	}

	client, err := New(cfg, tokens, opts...)
	if err != nil {
		_ = tokens.Close()
		return nil, nil, err
	}

	return client, tokens, nil
}
