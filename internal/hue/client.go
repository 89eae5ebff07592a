// Package hue talks to a Philips Hue bridge over the local v1 REST API.
package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultRateLimit is the request rate the bridge handles comfortably.
const DefaultRateLimit = 10.0

// Client builds authenticated requests against the paired bridge.
type Client struct {
	session    *Session
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the session.
// timeout of zero means no per-request timeout; rps of zero disables rate limiting.
func NewClient(session *Session, timeout time.Duration, rps float64) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &Client{
		session:    session,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Session returns the session the client authenticates with
func (c *Client) Session() *Session {
	return c.session
}

// Close closes idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Call is a prepared bridge request that has not been sent yet.
type Call struct {
	client *Client
	req    *http.Request
	err    error
}

// Fetch prepares a request to path under the bridge API root.
// ok is false when the session is not paired; callers treat that as "not connected", not as a failure.
func (c *Client) Fetch(ctx context.Context, method, path string, body []byte) (*Call, bool) {
	creds, ok := c.session.Credentials()
	if !ok {
		return nil, false
	}

	url := fmt.Sprintf("http://%s/api/%s%s", creds.Address, creds.Username, path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &Call{client: c, err: fmt.Errorf("failed to build request: %w", err)}, true
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return &Call{client: c, req: req}, true
}

// Do sends the request. Only transport failures are returned; bridge level errors are logged.
func (call *Call) Do() error {
	if call.err != nil {
		return call.err
	}

	ctx := call.req.Context()
	if err := call.client.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := call.client.httpClient.Do(call.req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read bridge response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Str("method", call.req.Method).
			Str("path", call.req.URL.Path).
			Int("status", resp.StatusCode).
			Msg("Bridge returned non-success status")
		return nil
	}

	logBridgeErrors(call.req, body)
	return nil
}

// logBridgeErrors reports {"error": ...} entries from a v1 response array.
func logBridgeErrors(req *http.Request, body []byte) {
	var entries []struct {
		Error *BridgeError `json:"error"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return
	}

	for _, e := range entries {
		if e.Error == nil {
			continue
		}
		log.Warn().
			Str("method", req.Method).
			Int("type", e.Error.Type).
			Str("address", e.Error.Address).
			Str("description", e.Error.Description).
			Msg("Bridge rejected request")
	}
}

// DoAll sends all calls concurrently and waits for them.
// The first transport error fails the whole batch.
func DoAll(ctx context.Context, calls []*Call) error {
	g, _ := errgroup.WithContext(ctx)
	for _, call := range calls {
		call := call
		g.Go(call.Do)
	}
	return g.Wait()
}

// StateCalls prepares a PUT of state for every ref.
// Refs are skipped entirely when the session is not paired.
func (c *Client) StateCalls(ctx context.Context, refs []Ref, state State) ([]*Call, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	calls := make([]*Call, 0, len(refs))
	for _, ref := range refs {
		call, ok := c.Fetch(ctx, http.MethodPut, ref.StatePath(), body)
		if !ok {
			continue
		}
		calls = append(calls, call)
	}
	return calls, nil
}
