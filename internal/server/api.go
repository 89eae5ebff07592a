package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/actions"
	"github.com/dokzlo13/espresso-hue/internal/ledger"
)

const (
	defaultRunsLimit = 50
	maxRunsLimit     = 500
)

// runRequest is the body of POST /api/actions/{slug}/run
type runRequest struct {
	Settings    map[string]any `json:"settings"`
	TriggerData map[string]any `json:"trigger"`
}

// MountAPI exposes the host's action and option registries, and the run history when l is set
func (s *Server) MountAPI(registry *actions.Registry, options *actions.Options, invoker *actions.Invoker, l *ledger.Ledger) {
	api := s.router.PathPrefix("/api").Subrouter()

	if l != nil {
		api.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
			listRuns(w, r, l)
		}).Methods(http.MethodGet)

		api.HandleFunc("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
			entries, err := l.GetByRun(mux.Vars(r)["id"])
			if err != nil {
				log.Error().Err(err).Msg("Failed to read run history")
				writeError(w, http.StatusInternalServerError, "failed to read run history")
				return
			}
			if len(entries) == 0 {
				writeError(w, http.StatusNotFound, "unknown run")
				return
			}
			writeJSON(w, http.StatusOK, entries)
		}).Methods(http.MethodGet)
	}

	api.HandleFunc("/actions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, registry.Descriptors())
	}).Methods(http.MethodGet)

	api.HandleFunc("/actions/{slug}/run", func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]
		if !invoker.HasAction(slug) {
			writeError(w, http.StatusNotFound, "unknown action")
			return
		}

		var req runRequest
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read body")
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
		}

		result, err := invoker.Invoke(r.Context(), actions.Invocation{
			Slug:        slug,
			Settings:    req.Settings,
			TriggerData: req.TriggerData,
			Source:      "api",
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, result)
	}).Methods(http.MethodPost)

	api.HandleFunc("/options/{slug}", func(w http.ResponseWriter, r *http.Request) {
		opts, ok := options.Get(r.Context(), mux.Vars(r)["slug"])
		if !ok {
			writeError(w, http.StatusNotFound, "unknown option source")
			return
		}
		writeJSON(w, http.StatusOK, opts)
	}).Methods(http.MethodGet)
}

// listRuns serves GET /api/runs?type=action_failed&limit=20, newest first
func listRuns(w http.ResponseWriter, r *http.Request, l *ledger.Ledger) {
	q := r.URL.Query()

	eventType := ledger.EventType(q.Get("type"))
	switch eventType {
	case "":
		eventType = ledger.EventActionCompleted
	case ledger.EventActionStarted, ledger.EventActionCompleted, ledger.EventActionFailed:
	default:
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	limit := defaultRunsLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	entries, err := l.GetByType(eventType, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read run history")
		writeError(w, http.StatusInternalServerError, "failed to read run history")
		return
	}
	if entries == nil {
		entries = []*ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
