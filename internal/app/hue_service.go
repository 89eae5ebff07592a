package app

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/color"
	"github.com/dokzlo13/espresso-hue/internal/config"
	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/hue"
	"github.com/dokzlo13/espresso-hue/internal/vault"
)

// HueService wraps the bridge session, its client and the pairing flow.
type HueService struct {
	Session *hue.Session
	Client  *hue.Client
	Pairer  *hue.Pairer
	Gamut   *color.Gamut
}

// NewHueService loads the persisted session and builds the bridge client around it.
// A pairing whose token is gone from the vault is cleared so it reports disconnected.
func NewHueService(cfg *config.Config, store host.Store, tokens host.TokenVault) (*HueService, error) {
	session, err := hue.LoadSession(store, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to load hue session: %w", err)
	}

	if err := session.Verify(); err != nil {
		if !errors.Is(err, vault.ErrNotFound) {
			log.Warn().Err(err).Msg("Bridge token cannot be read, pair again from /hue")
		} else {
			log.Warn().Msg("Bridge token is missing from the vault, clearing the pairing")
			if err := session.Revoke(); err != nil {
				return nil, fmt.Errorf("failed to clear stale pairing: %w", err)
			}
		}
	}

	gamut, err := color.ParseGamut(cfg.Hue.Gamut)
	if err != nil {
		return nil, err
	}

	client := hue.NewClient(session, cfg.Hue.RequestTimeout(), cfg.Hue.RateLimitRPS)
	pairer := hue.NewPairer(cfg.Hue.DiscoveryURL, cfg.Hue.DeviceType, cfg.Hue.RequestTimeout())

	if creds, ok := session.Credentials(); ok {
		log.Info().Str("bridge", creds.Address).Msg("Loaded paired Hue bridge")
	} else {
		log.Info().Msg("No Hue bridge paired yet, open /hue to pair")
	}

	return &HueService{
		Session: session,
		Client:  client,
		Pairer:  pairer,
		Gamut:   gamut,
	}, nil
}

// Close releases all resources.
func (s *HueService) Close() {
	if s.Client != nil {
		s.Client.Close()
	}
}
