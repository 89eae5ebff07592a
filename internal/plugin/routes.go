package plugin

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/hue"
)

// Pairing failure codes returned by /api/hue/auth
const (
	CodeDiscovery      = "discovery_error"
	CodeNoBridge       = "no_bridge"
	CodeNoAuthResponse = "no_auth_res"
	CodeAuthFail       = "auth_fail"
)

type statusResponse struct {
	Connected bool `json:"connected"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Routes returns the HTTP endpoints the plugin mounts
func (p *Plugin) Routes() []host.Route {
	return []host.Route{
		{Path: "/hue", Method: http.MethodGet, Handler: p.handleDashboard},
		{Path: "/api/hue", Method: http.MethodGet, Handler: p.handleStatus},
		{Path: "/api/hue/auth", Method: http.MethodGet, Handler: p.handleAuth},
		{Path: "/api/hue/auth/revoke", Method: http.MethodPost, Handler: p.handleRevoke},
	}
}

func (p *Plugin) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dir, ok := p.paths.Path(Name)
	if !ok {
		w.Write([]byte("error file not found"))
		return
	}
	http.ServeFile(w, r, filepath.Join(dir, "public", "dashboard.html"))
}

func (p *Plugin) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Connected: p.client.Session().Connected()})
}

func (p *Plugin) handleAuth(w http.ResponseWriter, r *http.Request) {
	address, err := p.pairer.Pair(r.Context(), p.client.Session())
	if err == nil {
		log.Info().Str("address", address).Msg("Paired with Hue bridge")
		w.WriteHeader(http.StatusOK)
		return
	}

	var pairErr *hue.PairError
	switch {
	case errors.Is(err, hue.ErrDiscovery):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Can't connect to bridge discovery utility.",
			Code:  CodeDiscovery,
		})
	case errors.Is(err, hue.ErrNoBridge):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "No bridges discovered on your network.",
			Code:  CodeNoBridge,
		})
	case errors.Is(err, hue.ErrNoAuthResponse):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "No auth response from the bridge.",
			Code:  CodeNoAuthResponse,
		})
	case errors.As(err, &pairErr):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: pairErr.Description,
			Code:  CodeAuthFail,
		})
	default:
		log.Error().Err(err).Msg("Pairing failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Warn().Err(err).Msg("Pairing failed")
}

func (p *Plugin) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := p.client.Session().Revoke(); err != nil {
		log.Error().Err(err).Msg("Failed to revoke bridge session")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	log.Info().Msg("Hue bridge session revoked")
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}
