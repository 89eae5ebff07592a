package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokzlo13/espresso-hue/internal/config"
	"github.com/dokzlo13/espresso-hue/internal/ledger"
	"github.com/dokzlo13/espresso-hue/internal/storage/kv"
	"github.com/dokzlo13/espresso-hue/internal/vault"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.PluginDir = filepath.Join(dir, "plugins")
	cfg.Database.Path = filepath.Join(dir, "test.sqlite")
	cfg.Vault.KeyPath = filepath.Join(dir, "keys", "vault.key")
	cfg.Automations = []config.Automation{{
		Name:     "doorbell",
		Method:   "POST",
		Path:     "/doorbell",
		Action:   "hue:set-light-state",
		Settings: map[string]any{"lights": []any{"light:1"}},
	}}
	return &cfg
}

func newServices(t *testing.T, cfg *config.Config) *Services {
	t.Helper()
	s, err := NewServices(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func serve(s *Services, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{"pressed":true}`))
	rec := httptest.NewRecorder()
	s.HTTP.Server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServices_RegistersPlugin(t *testing.T) {
	cfg := testConfig(t)
	s := newServices(t, cfg)

	slugs := make([]string, 0)
	for _, d := range s.Registry.Descriptors() {
		slugs = append(slugs, d.Slug)
	}
	assert.ElementsMatch(t, []string{"hue:flash-lights", "hue:set-light-state"}, slugs)

	opts, ok := s.Options.Get(context.Background(), "hue:lights-and-groups")
	require.True(t, ok)
	assert.Empty(t, opts)

	rec := serve(s, http.MethodGet, "/api/hue")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":false}`, rec.Body.String())

	rec = serve(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	// vault key is created on first start
	info, err := os.Stat(cfg.Vault.KeyPath)
	require.NoError(t, err)
	assert.EqualValues(t, 32, info.Size())
}

func TestServices_WebhookRunsAutomation(t *testing.T) {
	s := newServices(t, testConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx, nil))

	rec := serve(s, http.MethodPost, "/hooks/doorbell")
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = serve(s, http.MethodPost, "/hooks/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Eventually(t, func() bool {
		entries, err := s.Ledger.GetByType(ledger.EventActionCompleted, 10)
		return err == nil && len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)

	entries, err := s.Ledger.GetByType(ledger.EventActionCompleted, 10)
	require.NoError(t, err)
	assert.Equal(t, "hue:set-light-state", entries[0].Action)
	assert.Equal(t, "webhook", entries[0].Source)
}

func TestServices_ResetSession(t *testing.T) {
	cfg := testConfig(t)
	s := newServices(t, cfg)

	require.NoError(t, s.Hue.Session.Authenticate("192.168.1.2", "secret-user"))
	assert.True(t, s.Hue.Session.Connected())
	s.Close()

	// pairing survives a restart
	s = newServices(t, cfg)
	assert.True(t, s.Hue.Session.Connected())

	require.NoError(t, s.ResetSession())
	assert.False(t, s.Hue.Session.Connected())
}

func TestPluginPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hue"), 0o755))

	paths := pluginPaths{root: root}

	dir, ok := paths.Path("hue")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, "hue"), dir)

	_, ok = paths.Path("missing")
	assert.False(t, ok)
}

func TestServices_StalePairingIsCleared(t *testing.T) {
	cfg := testConfig(t)
	s := newServices(t, cfg)

	require.NoError(t, s.Hue.Session.Authenticate("192.168.1.2", "secret-user"))
	require.NoError(t, s.Vault.Delete(*s.Hue.Session.Settings().Token))
	s.Close()

	s = newServices(t, cfg)
	assert.False(t, s.Hue.Session.Connected())

	rec := serve(s, http.MethodGet, "/api/hue")
	assert.JSONEq(t, `{"connected":false}`, rec.Body.String())
}

func TestNewHueService_HostStores(t *testing.T) {
	cfg := config.Default()
	store := kv.NewManager(nil).Bucket("hue")
	tokens := vault.NewMemory()

	svc, err := NewHueService(&cfg, store, tokens)
	require.NoError(t, err)
	require.NoError(t, svc.Session.Authenticate("10.0.0.2", "user"))

	reloaded, err := NewHueService(&cfg, store, tokens)
	require.NoError(t, err)
	creds, ok := reloaded.Session.Credentials()
	require.True(t, ok)
	assert.Equal(t, "user", creds.Username)
}

func TestServices_StopWaitsForHTTPShutdown(t *testing.T) {
	s := newServices(t, testConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx, nil))

	cancel()
	require.NoError(t, s.Stop())

	select {
	case <-s.HTTP.done:
	default:
		t.Fatal("Stop returned before the HTTP server finished")
	}
	assert.Error(t, s.DB.DB.Ping())
}

func TestHTTPService_WaitWithoutStart(t *testing.T) {
	svc := NewHTTPService(testConfig(t))
	assert.NoError(t, svc.Wait(context.Background()))
}
