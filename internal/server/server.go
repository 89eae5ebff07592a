// Package server is the host HTTP server plugins mount their routes on.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/host"
)

// Server is the HTTP server
type Server struct {
	addr   string
	router *mux.Router

	mu     sync.Mutex
	routes map[string]bool
}

// New creates a new HTTP server with the health endpoints mounted
func New(addr string) *Server {
	s := &Server{
		addr:   addr,
		router: mux.NewRouter(),
		routes: make(map[string]bool),
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// RegisterRoute mounts a plugin route. Registering the same method and path twice fails.
func (s *Server) RegisterRoute(route host.Route) error {
	method := strings.ToUpper(route.Method)
	if method == "" {
		method = http.MethodGet
	}
	key := method + " " + route.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.routes[key] {
		return fmt.Errorf("route %s already registered", key)
	}
	s.routes[key] = true

	s.router.HandleFunc(route.Path, route.Handler).Methods(method)
	log.Debug().Str("method", method).Str("path", route.Path).Msg("Registered route")
	return nil
}

// Mount serves every request under prefix with h
func (s *Server) Mount(prefix string, h http.Handler) {
	s.router.PathPrefix(prefix).Handler(h)
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("Starting HTTP server")

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
