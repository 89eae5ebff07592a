package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultDiscoveryURL is the public bridge discovery endpoint.
const DefaultDiscoveryURL = "https://discovery.meethue.com/"

// DefaultDeviceType identifies this application to the bridge when pairing.
const DefaultDeviceType = "espresso-hue"

// Pairing failures, one per step of the flow.
var (
	ErrDiscovery      = errors.New("can't connect to bridge discovery utility")
	ErrNoBridge       = errors.New("no bridges discovered on your network")
	ErrNoAuthResponse = errors.New("no auth response")
)

// BridgeError is an {"error": ...} record from the v1 API.
type BridgeError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// LinkButtonNotPressed is the error type returned while the bridge button has not been pressed.
const LinkButtonNotPressed = 101

// PairError is returned when the bridge refuses the pairing request.
type PairError struct {
	BridgeError
}

func (e *PairError) Error() string {
	return e.Description
}

// DiscoveredBridge is an entry of the discovery service response.
type DiscoveredBridge struct {
	ID                string `json:"id"`
	InternalIPAddress string `json:"internalipaddress"`
}

// Pairer finds a bridge on the local network and requests a username from it.
type Pairer struct {
	discoveryURL string
	deviceType   string
	httpClient   *http.Client
}

// NewPairer creates a new pairer. Empty values fall back to the defaults.
func NewPairer(discoveryURL, deviceType string, timeout time.Duration) *Pairer {
	if discoveryURL == "" {
		discoveryURL = DefaultDiscoveryURL
	}
	if deviceType == "" {
		deviceType = DefaultDeviceType
	}
	return &Pairer{
		discoveryURL: discoveryURL,
		deviceType:   deviceType,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Discover queries the discovery service.
func (p *Pairer) Discover(ctx context.Context) ([]DiscoveredBridge, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrDiscovery, resp.StatusCode)
	}

	var bridges []DiscoveredBridge
	if err := json.NewDecoder(resp.Body).Decode(&bridges); err != nil {
		return nil, fmt.Errorf("failed to decode discovery response: %w", err)
	}

	return bridges, nil
}

// Pair discovers bridges, asks the first one for a username and stores it in the session.
// Only the first discovered bridge is attempted.
func (p *Pairer) Pair(ctx context.Context, session *Session) (string, error) {
	bridges, err := p.Discover(ctx)
	if err != nil {
		return "", err
	}
	if len(bridges) == 0 {
		return "", ErrNoBridge
	}

	address := bridges[0].InternalIPAddress
	if len(bridges) > 1 {
		log.Info().
			Int("count", len(bridges)).
			Str("address", address).
			Msg("Multiple bridges discovered, pairing with the first one")
	}

	username, err := p.requestUsername(ctx, address)
	if err != nil {
		return "", err
	}

	if err := session.Authenticate(address, username); err != nil {
		return "", err
	}

	return address, nil
}

func (p *Pairer) requestUsername(ctx context.Context, address string) (string, error) {
	body, err := json.Marshal(map[string]string{"devicetype": p.deviceType})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://%s/api", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build pairing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pairing request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read pairing response: %w", err)
	}

	var entries []struct {
		Success *struct {
			Username string `json:"username"`
		} `json:"success"`
		Error *BridgeError `json:"error"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return "", fmt.Errorf("failed to decode pairing response: %w", err)
	}

	if len(entries) == 0 {
		return "", ErrNoAuthResponse
	}

	entry := entries[0]
	switch {
	case entry.Success != nil && entry.Success.Username != "":
		return entry.Success.Username, nil
	case entry.Error != nil:
		return "", &PairError{BridgeError: *entry.Error}
	default:
		return "", fmt.Errorf("unexpected pairing response: %s", string(raw))
	}
}
