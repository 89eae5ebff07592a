package kv

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Manager hands out one bucket per plugin namespace.
type Manager struct {
	db      *sql.DB
	buckets map[string]Bucket
	mu      sync.Mutex
}

// NewManager creates a new KV manager. A nil db makes every bucket in-memory.
func NewManager(db *sql.DB) *Manager {
	return &Manager{
		db:      db,
		buckets: make(map[string]Bucket),
	}
}

// Bucket returns a bucket by name, creating it if it doesn't exist.
func (m *Manager) Bucket(name string) Bucket {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bucket, ok := m.buckets[name]; ok {
		return bucket
	}

	var bucket Bucket
	if m.db != nil {
		bucket = NewSQLiteBucket(m.db, name)
	} else {
		bucket = NewMemoryBucket(name)
	}

	m.buckets[name] = bucket
	log.Debug().
		Str("bucket", name).
		Bool("persistent", bucket.IsPersistent()).
		Msg("Created KV bucket")

	return bucket
}

// List returns all known bucket names.
func (m *Manager) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	for name := range m.buckets {
		seen[name] = true
	}

	if m.db != nil {
		rows, err := m.db.Query(`SELECT DISTINCT bucket FROM kv_store`)
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, fmt.Errorf("failed to scan bucket name: %w", err)
			}
			seen[name] = true
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
