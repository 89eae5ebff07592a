// Package app wires the espresso-hue host together: storage, the Hue plugin,
// the action registry, webhook triggers and the HTTP server.
package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/config"
)

// App owns the running host and its shutdown.
type App struct {
	cfg      *config.Config
	services *Services

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds every service without starting any of them.
func New(cfg *config.Config) (*App, error) {
	services, err := NewServices(cfg)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, services: services}, nil
}

// Start serves until ctx is cancelled or a service fails.
func (a *App) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	fatal := func(err error) {
		log.Error().Err(err).Msg("Service failed, shutting down")
		a.cancel()
	}
	if err := a.services.Start(a.ctx, fatal); err != nil {
		a.cancel()
		return err
	}

	log.Info().Str("addr", a.cfg.Server.Addr()).Str("plugin", a.services.Plugin.Name()).Msg("espresso-hue started")
	return nil
}

// Wait returns once the host begins shutting down.
func (a *App) Wait() {
	if a.ctx == nil {
		return
	}
	<-a.ctx.Done()
}

// Stop cancels the host, lets the HTTP server drain, then closes storage.
func (a *App) Stop() error {
	log.Info().Msg("Shutting down...")
	if a.cancel != nil {
		a.cancel()
	}
	if a.services == nil {
		return nil
	}
	return a.services.Stop()
}

// ResetSession forgets the paired bridge and deletes its token from the vault.
func (a *App) ResetSession() error {
	if a.services == nil {
		return nil
	}
	return a.services.ResetSession()
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() context.Context {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
		log.Warn().Msg("Received shutdown signal")
	}()
	return ctx
}
