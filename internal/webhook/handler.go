// Package webhook receives trigger requests and publishes them to the event bus.
package webhook

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/eventbus"
)

// MaxBodySize caps the webhook request body.
const MaxBodySize = 1 << 20

// PathMatcher reports whether a request would trigger anything.
type PathMatcher interface {
	HasMatch(method, path string) bool
}

// Handler publishes every accepted request as a webhook event.
type Handler struct {
	prefix  string
	bus     *eventbus.Bus
	matcher PathMatcher
}

// NewHandler creates a webhook handler for requests under prefix.
// A nil matcher accepts every path.
func NewHandler(prefix string, bus *eventbus.Bus, matcher PathMatcher) *Handler {
	return &Handler{
		prefix:  strings.TrimSuffix(prefix, "/"),
		bus:     bus,
		matcher: matcher,
	}
}

// ServeHTTP processes incoming webhook requests and publishes them to the event bus.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, h.prefix)
	if path == "" {
		path = "/"
	}

	if h.matcher != nil && !h.matcher.HasMatch(r.Method, path) {
		log.Debug().Str("method", r.Method).Str("path", path).Msg("Webhook request has no automation")
		http.Error(w, "no automation for this path", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read webhook request body")
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Not valid JSON is fine - json stays nil
	var jsonBody any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &jsonBody); err != nil {
			jsonBody = nil
		}
	}

	headers := make(map[string]any)
	for key, values := range r.Header {
		if len(values) == 1 {
			headers[key] = values[0]
		} else {
			headers[key] = values
		}
	}

	query := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			query[key] = values[0]
		} else {
			query[key] = values
		}
	}

	eventID := fmt.Sprintf("webhook-%s-%d", path, time.Now().UnixNano())

	log.Debug().
		Str("method", r.Method).
		Str("path", path).
		Int("body_len", len(body)).
		Str("event_id", eventID).
		Msg("Received webhook request")

	h.bus.Publish(eventbus.Event{
		Type: eventbus.EventTypeWebhook,
		Data: map[string]any{
			"method":   r.Method,
			"path":     path,
			"body":     string(body),
			"json":     jsonBody,
			"headers":  headers,
			"query":    query,
			"event_id": eventID,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"status":"accepted","event_id":"` + eventID + `"}`))
}
