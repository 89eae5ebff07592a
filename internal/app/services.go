package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/actions"
	"github.com/dokzlo13/espresso-hue/internal/automation"
	"github.com/dokzlo13/espresso-hue/internal/color"
	"github.com/dokzlo13/espresso-hue/internal/config"
	"github.com/dokzlo13/espresso-hue/internal/db"
	"github.com/dokzlo13/espresso-hue/internal/eventbus"
	"github.com/dokzlo13/espresso-hue/internal/ledger"
	"github.com/dokzlo13/espresso-hue/internal/plugin"
	"github.com/dokzlo13/espresso-hue/internal/storage/kv"
	"github.com/dokzlo13/espresso-hue/internal/template"
	"github.com/dokzlo13/espresso-hue/internal/vault"
	"github.com/dokzlo13/espresso-hue/internal/webhook"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB     *db.DB
	Ledger *ledger.Ledger
	KV     *kv.Manager
	Vault  *vault.SQLiteVault

	// Action system
	Registry *actions.Registry
	Options  *actions.Options
	Invoker  *actions.Invoker

	// Triggers
	Bus         *eventbus.Bus
	Automations *automation.Router

	// High-level services
	Hue         *HueService
	HTTP        *HTTPService
	LedgerClean *LedgerService
	Plugin      *plugin.Plugin
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database

	s.Ledger = ledger.New(database.DB)
	s.KV = kv.NewManager(database.DB)

	// Token vault, keyed by a local file
	key, err := vault.LoadOrCreateKey(cfg.Vault.KeyPath)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load vault key: %w", err)
	}
	cipher, err := vault.NewCipher(key)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Vault = vault.NewSQLite(database.DB, cipher)

	s.Hue, err = NewHueService(cfg, s.KV.Bucket(plugin.Name), s.Vault)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Action system
	s.Registry = actions.NewRegistry()
	s.Options = actions.NewOptions()
	s.Invoker = actions.NewInvoker(s.Registry, s.Ledger)

	s.HTTP = NewHTTPService(cfg)
	s.HTTP.Server.MountAPI(s.Registry, s.Options, s.Invoker, s.Ledger)

	s.Plugin = plugin.New(plugin.Deps{
		Client:    s.Hue.Client,
		Pairer:    s.Hue.Pairer,
		Colors:    color.NewResolver(),
		Templater: template.New(template.DefaultTimeout),
		Paths:     pluginPaths{root: cfg.Server.PluginDir},
		Gamut:     s.Hue.Gamut,
	})
	reg := &registrar{actions: s.Registry, options: s.Options, server: s.HTTP.Server}
	if err := s.Plugin.Register(reg); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register plugin %s: %w", s.Plugin.Name(), err)
	}

	// Webhook triggers
	s.Bus = eventbus.New(cfg.EventBus.Workers, cfg.EventBus.QueueSize)
	defs := make([]automation.Definition, 0, len(cfg.Automations))
	for _, a := range cfg.Automations {
		if !s.Invoker.HasAction(a.Action) {
			log.Warn().Str("automation", a.Name).Str("action", a.Action).Msg("Automation references an unknown action")
		}
		defs = append(defs, automation.Definition{
			Name:     a.Name,
			Method:   a.Method,
			Path:     a.Path,
			Action:   a.Action,
			Settings: a.Settings,
			Debounce: a.Debounce.Duration(),
		})
	}
	s.Automations = automation.NewRouter(defs)
	s.HTTP.Server.Mount(cfg.Server.HooksPrefix, webhook.NewHandler(cfg.Server.HooksPrefix, s.Bus, s.Automations))

	s.LedgerClean = NewLedgerService(s.Ledger, cfg.Ledger.CleanupInterval.Duration(), cfg.Ledger.Retention())

	return s, nil
}

// Start starts all services in the correct order.
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	automation.RegisterHandlers(ctx, s.Automations, s.Bus, s.Invoker)

	s.LedgerClean.Start(ctx)
	s.HTTP.Start(ctx, onFatalError)

	return nil
}

// ResetSession revokes the stored bridge pairing.
func (s *Services) ResetSession() error {
	return s.Hue.Session.Revoke()
}

// Stop waits for in-flight HTTP requests to drain, then releases resources.
// The context passed to Start must already be cancelled.
func (s *Services) Stop() error {
	var err error
	if s.HTTP != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
		err = s.HTTP.Wait(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("HTTP server did not stop in time")
		}
	}
	s.Close()
	return err
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
		defer cancel()
		s.Bus.Close(ctx)
	}
	if s.Hue != nil {
		s.Hue.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
