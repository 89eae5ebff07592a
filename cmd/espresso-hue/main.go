package main

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/app"
	"github.com/dokzlo13/espresso-hue/internal/config"
)

func main() {
	cmd := kingpin.New("espresso-hue", "Philips Hue plugin host for espresso automations.")
	configPath := cmd.Flag("config", "Path to configuration file").
		Short('c').
		Default("config.yaml").
		String()
	resetSession := cmd.Flag("reset-session", "Forget the paired bridge and its token on startup").Bool()
	logLevel := cmd.Flag("log.level", "Overrides log.level from the configuration file").
		Enum("", "debug", "info", "warn", "error")

	kingpin.MustParse(cmd.Parse(os.Args[1:]))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load configuration")
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	// Setup logging
	setupLogging(cfg.Log.Level, cfg.Log.UseJSON, cfg.Log.Colors)

	log.Info().Str("config", *configPath).Msg("Starting espresso-hue")

	// Create application
	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	if *resetSession {
		log.Info().Msg("Forgetting paired bridge (--reset-session)")
		if err := application.ResetSession(); err != nil {
			log.Warn().Err(err).Msg("Failed to reset bridge session")
		}
	}

	// Create context that cancels on shutdown signal
	ctx := app.SignalContext()

	// Start the application
	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	// Wait for shutdown
	application.Wait()

	// Graceful shutdown
	if err := application.Stop(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}

// loadConfig reads the configuration file, falling back to defaults when it does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("config", path).Msg("Configuration file not found, using defaults")
		return config.Parse(nil)
	}
	return cfg, err
}

func setupLogging(level string, useJSON bool, colors bool) {
	// ISO 8601 format with timezone
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		// JSON output for production
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		// Text output (with optional colors)
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
