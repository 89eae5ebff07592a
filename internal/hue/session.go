package hue

import (
	"fmt"
	"sync"

	"github.com/amimof/huego"
	"github.com/rs/zerolog/log"
)

// SessionKey is the key the session settings are stored under.
const SessionKey = "hue"

// SessionVersion is the schema version written with new sessions.
const SessionVersion = "1.0.0"

// KeyValue is the persistent store the session is saved to.
type KeyValue interface {
	Get(key string) (any, error)
	Set(key string, value any) error
}

// Vault keeps secrets out of the session. Set returns an opaque handle for a secret.
type Vault interface {
	Set(secret string) (string, error)
	Get(handle string) (string, error)
	Delete(handle string) error
}

// Settings is the persisted shape of a session.
// Address and Token are either both set or both nil.
type Settings struct {
	Address *string `json:"address"`
	Token   *string `json:"token"` // vault handle, never the raw username
	Version string  `json:"version"`
}

// Credentials is what a bridge request needs.
type Credentials struct {
	Address  string
	Username string
}

// Bridge returns a huego bridge for the credentials
func (c Credentials) Bridge() *huego.Bridge {
	return huego.New(c.Address, c.Username)
}

// Session holds the paired bridge address and a vault handle for its token.
type Session struct {
	mu       sync.RWMutex
	store    KeyValue
	vault    Vault
	settings Settings
}

// LoadSession reads the session from store, creating and saving an empty one on first use.
func LoadSession(store KeyValue, vault Vault) (*Session, error) {
	s := &Session{store: store, vault: vault}

	raw, err := store.Get(SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if raw == nil {
		s.settings = Settings{Version: SessionVersion}
		if err := s.save(); err != nil {
			return nil, err
		}
		log.Debug().Msg("Created empty Hue session")
		return s, nil
	}

	s.settings = decodeSettings(raw)
	if (s.settings.Address == nil) != (s.settings.Token == nil) {
		log.Warn().Msg("Stored Hue session is half populated, clearing it")
		s.settings.Address = nil
		s.settings.Token = nil
		if err := s.save(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Authenticate stores address and the bridge username. The username goes to the vault;
// the session only keeps the returned handle.
func (s *Session) Authenticate(address, username string) error {
	handle, err := s.vault.Set(username)
	if err != nil {
		return fmt.Errorf("failed to store bridge token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.settings
	s.settings.Address = &address
	s.settings.Token = &handle

	if err := s.save(); err != nil {
		s.settings = previous
		_ = s.vault.Delete(handle)
		return err
	}

	if previous.Token != nil && *previous.Token != handle {
		if err := s.vault.Delete(*previous.Token); err != nil {
			log.Warn().Err(err).Msg("Failed to delete replaced bridge token")
		}
	}

	log.Info().Str("address", address).Msg("Hue bridge paired")
	return nil
}

// Revoke deletes the token from the vault and clears the session.
func (s *Session) Revoke() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.Token != nil {
		if err := s.vault.Delete(*s.settings.Token); err != nil {
			log.Warn().Err(err).Msg("Failed to delete bridge token from vault")
		}
	}

	s.settings.Address = nil
	s.settings.Token = nil

	if err := s.save(); err != nil {
		return err
	}

	log.Info().Msg("Hue bridge pairing revoked")
	return nil
}

// Connected reports whether both address and token are present.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Address != nil && s.settings.Token != nil
}

// Verify checks that the token handle of a paired session still resolves in the vault.
// An unpaired session always verifies.
func (s *Session) Verify() error {
	s.mu.RLock()
	token := s.settings.Token
	s.mu.RUnlock()

	if token == nil {
		return nil
	}
	_, err := s.vault.Get(*token)
	return err
}

// Settings returns a copy of the current settings
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Credentials resolves the bridge address and username.
// ok is false when the session is not paired or the token is gone from the vault.
func (s *Session) Credentials() (Credentials, bool) {
	s.mu.RLock()
	address, token := s.settings.Address, s.settings.Token
	s.mu.RUnlock()

	if address == nil || token == nil {
		return Credentials{}, false
	}

	username, err := s.vault.Get(*token)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to resolve bridge token")
		return Credentials{}, false
	}

	return Credentials{Address: *address, Username: username}, true
}

// save writes the settings; callers hold the lock.
func (s *Session) save() error {
	value := map[string]any{
		"address": nil,
		"token":   nil,
		"version": s.settings.Version,
	}
	if s.settings.Address != nil {
		value["address"] = *s.settings.Address
	}
	if s.settings.Token != nil {
		value["token"] = *s.settings.Token
	}

	if err := s.store.Set(SessionKey, value); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func decodeSettings(raw any) Settings {
	settings := Settings{Version: SessionVersion}

	m, ok := raw.(map[string]any)
	if !ok {
		return settings
	}

	if v, ok := m["address"].(string); ok && v != "" {
		settings.Address = &v
	}
	if v, ok := m["token"].(string); ok && v != "" {
		settings.Token = &v
	}
	if v, ok := m["version"].(string); ok && v != "" {
		settings.Version = v
	}

	return settings
}
