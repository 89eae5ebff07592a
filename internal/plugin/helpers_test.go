package plugin

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dokzlo13/espresso-hue/internal/color"
	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/hue"
	"github.com/dokzlo13/espresso-hue/internal/storage/kv"
	"github.com/dokzlo13/espresso-hue/internal/template"
	"github.com/dokzlo13/espresso-hue/internal/vault"
)

type bridgeRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeBridge records every request and answers GETs from a fixed set of JSON documents.
type fakeBridge struct {
	mu        sync.Mutex
	requests  []bridgeRequest
	documents map[string]string
}

func newFakeBridge(t *testing.T) (*fakeBridge, *httptest.Server) {
	t.Helper()
	b := &fakeBridge{documents: make(map[string]string)}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBridge) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	b.mu.Lock()
	b.requests = append(b.requests, bridgeRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	doc, ok := b.documents[r.URL.Path]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet {
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(doc))
		return
	}
	w.Write([]byte(`[{"success":{}}]`))
}

func (b *fakeBridge) serveDocument(path, doc string) {
	b.mu.Lock()
	b.documents[path] = doc
	b.mu.Unlock()
}

func (b *fakeBridge) recorded() []bridgeRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bridgeRequest(nil), b.requests...)
}

type staticPaths map[string]string

func (p staticPaths) Path(name string) (string, bool) {
	dir, ok := p[name]
	return dir, ok
}

type testPlugin struct {
	*Plugin
	session *hue.Session
}

func newSession(t *testing.T) *hue.Session {
	t.Helper()
	session, err := hue.LoadSession(kv.NewMemoryBucket(Name), vault.NewMemory())
	require.NoError(t, err)
	return session
}

func buildPlugin(t *testing.T, session *hue.Session, pairer *hue.Pairer, paths host.PluginPaths) *testPlugin {
	t.Helper()
	if pairer == nil {
		pairer = hue.NewPairer("http://127.0.0.1:1/", "espresso-hue", time.Second)
	}
	if paths == nil {
		paths = staticPaths{}
	}

	p := New(Deps{
		Client:    hue.NewClient(session, 5*time.Second, 0),
		Pairer:    pairer,
		Colors:    color.NewResolver(),
		Templater: template.New(0),
		Paths:     paths,
	})
	return &testPlugin{Plugin: p, session: session}
}

// pairedPlugin returns a plugin whose session points at srv with username "user".
func pairedPlugin(t *testing.T, srv *httptest.Server) *testPlugin {
	t.Helper()
	session := newSession(t)
	require.NoError(t, session.Authenticate(strings.TrimPrefix(srv.URL, "http://"), "user"))
	return buildPlugin(t, session, nil, nil)
}

func (p *testPlugin) action(t *testing.T, slug string) host.Action {
	t.Helper()
	for _, a := range p.Actions() {
		if a.Descriptor().Slug == slug {
			return a
		}
	}
	t.Fatalf("action %q not provided", slug)
	return nil
}

func (p *testPlugin) route(t *testing.T, method, path string) http.HandlerFunc {
	t.Helper()
	for _, r := range p.Routes() {
		if r.Method == method && r.Path == path {
			return r.Handler
		}
	}
	t.Fatalf("route %s %s not provided", method, path)
	return nil
}

// runContext applies the declared defaults the way the host invoker does.
func runContext(a host.Action, settings, trigger map[string]any) host.RunContext {
	if trigger == nil {
		trigger = map[string]any{}
	}
	return host.RunContext{
		RunID:       "test-run",
		Settings:    host.WithDefaults(a.Descriptor().Settings, settings),
		TriggerData: trigger,
	}
}

func xyOf(hex string) []any {
	rgb, err := color.NewResolver().Resolve(hex)
	if err != nil {
		panic(err)
	}
	xy := rgb.ToXY()
	return []any{xy[0], xy[1]}
}
