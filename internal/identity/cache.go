// Package identity supplies bearer credentials for outbound Partner Center
// calls, reusing a cached credential until it is close to expiry.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/cache"
	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSafetyMargin       = 5 * time.Minute
	DefaultAcquisitionTimeout = 30 * time.Second

	// Entra ID access tokens live for at most a day; entries older than this
	// are dropped from the store regardless of their recorded expiry.
	storeRetention = 24 * time.Hour

	storeMaxEntries = 16
)

// Credential is a bearer token along with the instant it should be replaced.
type Credential struct {
	AccessToken string    `json:"accessToken"`
	Expiry      time.Time `json:"expiry"`
	RenewAt     time.Time `json:"renewAt"`
}

// usableAt reports whether the credential may be handed out at the given
// instant.
func (c Credential) usableAt(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.RenewAt)
}

// Cache hands out a bearer credential for a single scope. A credential is
// reused until expiry minus the safety margin; after that the next caller
// triggers an acquisition. Concurrent callers that find the credential stale
// share one acquisition.
//
// A failed acquisition leaves the stored credential in place but never returns
// it.
type Cache struct {
	acquirer Acquirer
	store    cache.Store[Credential]
	scope    string

	safetyMargin       time.Duration
	acquisitionTimeout time.Duration
	now                func() time.Time

	flight singleflight.Group
}

type Option func(*Cache)

// NewStore builds the credential store described by cfg. A shared store lets
// several bridge processes reuse one credential.
func NewStore(ctx context.Context, cfg config.StoreConfig) (cache.Store[Credential], error) {
	return cache.NewStore[Credential](ctx, cfg, storeRetention, storeMaxEntries)
}

// WithSafetyMargin sets how long before the provider's expiry a credential is
// replaced.
func WithSafetyMargin(margin time.Duration) Option {
	return func(c *Cache) {
		c.safetyMargin = margin
	}
}

// WithAcquisitionTimeout bounds a single exchange with the identity provider.
func WithAcquisitionTimeout(timeout time.Duration) Option {
	return func(c *Cache) {
		c.acquisitionTimeout = timeout
	}
}

// WithStore replaces the default in-memory credential store.
func WithStore(store cache.Store[Credential]) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a credential cache for scope that acquires tokens through
// acquirer.
func New(acquirer Acquirer, scope string, opts ...Option) (*Cache, error) {
	if acquirer == nil {
		return nil, errors.New("an acquirer is required")
	}

	c := &Cache{
		acquirer:           acquirer,
		scope:              scope,
		safetyMargin:       DefaultSafetyMargin,
		acquisitionTimeout: DefaultAcquisitionTimeout,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		memory, err := cache.NewMemory[Credential](storeRetention, storeMaxEntries)
		if err != nil {
			return nil, fmt.Errorf("credential store configuration failed: %w", err)
		}
		c.store = cache.NewInstrumented[Credential](memory, "memory")
	}

	return c, nil
}

// Token returns a bearer token valid for at least the safety margin. Failures
// are reported as *AuthenticationError.
func (c *Cache) Token(ctx context.Context) (string, error) {
	if cred, ok := c.current(ctx); ok {
		zerolog.Ctx(ctx).Debug().
			Time("renewAt", cred.RenewAt).
			Msg("hit: reusing cached partner center access token")
		return cred.AccessToken, nil
	}

	// The acquisition is shared by every caller waiting on it, so it must not
	// be cancelled when this particular caller goes away.
	result := c.flight.DoChan(c.scope, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", &AuthenticationError{Scope: c.scope, Cause: ctx.Err()}
	case r := <-result:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(Credential).AccessToken, nil
	}
}

// Invalidate discards the cached credential so the next call acquires a new
// one.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.store.Invalidate(ctx, c.scope)
}

// Close releases the credential store.
func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) current(ctx context.Context) (Credential, bool) {
	cred, found, err := c.store.Get(ctx, c.scope)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("credential store read failed, treating as miss")
		return Credential{}, false
	}

	if !found || !cred.usableAt(c.now()) {
		return Credential{}, false
	}

	return cred, true
}

func (c *Cache) refresh(ctx context.Context) (Credential, error) {
	// A caller that queued behind a completed acquisition finds the new
	// credential here instead of starting another exchange.
	if cred, ok := c.current(ctx); ok {
		return cred, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.acquisitionTimeout)
	defer cancel()

	logger := zerolog.Ctx(ctx)
	logger.Info().Str("scope", c.scope).Msg("acquiring new partner center access token")

	cred, err := c.acquire(ctx)
	if err != nil {
		logger.Error().Err(err).Str("scope", c.scope).Msg("failed to acquire partner center access token")
		return Credential{}, &AuthenticationError{Scope: c.scope, Cause: err}
	}

	if err := c.store.Set(ctx, c.scope, cred); err != nil {
		logger.Warn().Err(err).Msg("credential store write failed, token will not be reused")
	}

	logger.Info().
		Time("expiry", cred.Expiry).
		Time("renewAt", cred.RenewAt).
		Msg("acquired partner center access token")

	return cred, nil
}

func (c *Cache) acquire(ctx context.Context) (Credential, error) {
	tok, err := c.acquirer.Acquire(ctx)
	if err != nil {
		return Credential{}, err
	}

	if tok == nil || tok.AccessToken == "" {
		return Credential{}, errors.New("token response contained no access token")
	}

	if tok.Expiry.IsZero() {
		return Credential{}, errors.New("token response contained no expiry")
	}

	cred := Credential{
		AccessToken: tok.AccessToken,
		Expiry:      tok.Expiry,
		RenewAt:     tok.Expiry.Add(-c.safetyMargin),
	}

	if !cred.usableAt(c.now()) {
		return Credential{}, fmt.Errorf("token expires at %s, inside the %s safety margin", tok.Expiry.Format(time.RFC3339), c.safetyMargin)
	}

	return cred, nil
}
