package hue

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// memoryStore mimics a JSON backed store: values are round-tripped through JSON.
type memoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	failOn string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]byte)}
}

func (m *memoryStore) Get(key string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (m *memoryStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == key {
		return errors.New("store unavailable")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

type memoryVault struct {
	mu      sync.Mutex
	next    int
	secrets map[string]string
}

func newMemoryVault() *memoryVault {
	return &memoryVault{secrets: make(map[string]string)}
}

func (v *memoryVault) Set(secret string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.next++
	handle := fmt.Sprintf("handle-%d", v.next)
	v.secrets[handle] = secret
	return handle, nil
}

func (v *memoryVault) Get(handle string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.secrets[handle]
	if !ok {
		return "", errors.New("unknown handle")
	}
	return s, nil
}

func (v *memoryVault) Delete(handle string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.secrets, handle)
	return nil
}

func (v *memoryVault) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.secrets)
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := LoadSession(newMemoryStore(), newMemoryVault())
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	return s
}

// pairedSession returns a session pointing at the test server with username "user".
func pairedSession(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	s := newTestSession(t)
	if err := s.Authenticate(strings.TrimPrefix(srv.URL, "http://"), "user"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	return s
}
