package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Hooks holds the cleanup steps run once the server has stopped accepting
// requests. Steps run in registration order and a failing step does not stop
// the ones after it.
type Hooks struct {
	hooks []hook
}

// Add registers fn under name. A nil fn is ignored.
func (h *Hooks) Add(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// AddCloser registers closer.Close under name. A nil closer is ignored.
func (h *Hooks) AddCloser(name string, closer io.Closer) {
	if closer == nil {
		return
	}
	h.Add(name, func(context.Context) error {
		return closer.Close()
	})
}

// Len reports the number of registered hooks.
func (h *Hooks) Len() int {
	return len(h.hooks)
}

// Run executes every hook with ctx and returns the failures, if any, joined.
func (h *Hooks) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	var errs []error
	for _, hk := range h.hooks {
		hookLog := logger.With().Str("hook", hk.name).Logger()

		hookLog.Info().Msg("shutdown started")
		if err := hk.fn(ctx); err != nil {
			hookLog.Warn().Err(err).Msg("shutdown failed")
			errs = append(errs, fmt.Errorf("%s: %w", hk.name, err))
			continue
		}
		hookLog.Info().Msg("shutdown complete")
	}

	return errors.Join(errs...)
}
