package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/config"
	"github.com/dokzlo13/espresso-hue/internal/server"
)

// HTTPService runs the host HTTP server.
type HTTPService struct {
	cfg    *config.Config
	Server *server.Server

	done chan struct{}
}

// NewHTTPService creates a new HTTPService.
func NewHTTPService(cfg *config.Config) *HTTPService {
	return &HTTPService{
		cfg:    cfg,
		Server: server.New(cfg.Server.Addr()),
	}
}

// Start begins serving in the background until ctx is cancelled.
// onFatalError is called when the listener cannot be started.
func (s *HTTPService) Start(ctx context.Context, onFatalError func(error)) {
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		if err := s.Server.Run(ctx, s.cfg.ShutdownTimeout.Duration()); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			if onFatalError != nil {
				onFatalError(err)
			}
		}
	}()
}

// Wait blocks until the server has finished its graceful shutdown or ctx expires.
// It returns immediately when the service was never started.
func (s *HTTPService) Wait(ctx context.Context) error {
	if s.done == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
