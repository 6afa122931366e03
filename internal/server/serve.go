// Package server runs the HTTP listener and coordinates an orderly shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Serve listens on srv.Addr and blocks until the server fails, ctx is
// cancelled, or the process receives SIGINT or SIGTERM.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, hooks *Hooks) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s failed: %w", srv.Addr, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return ServeListener(ctx, srv, ln, shutdownTimeout, hooks)
}

// ServeListener serves on ln until ctx is done. In-flight requests are given
// shutdownTimeout to complete, then hooks are run with whatever time remains.
func ServeListener(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, hooks *Hooks) error {
	logger := zerolog.Ctx(ctx)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("server: listening")
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Dur("timeout", shutdownTimeout).Msg("server: shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("graceful shutdown failed: %w", err))
	}

	if hooks != nil {
		if err := hooks.Run(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	logger.Info().Msg("server: shutdown complete")
	return nil
}
