// Package vault stores plugin secrets and hands out opaque handles for them.
package vault

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned for an unknown handle.
var ErrNotFound = errors.New("token not found")

// SQLiteVault keeps secrets encrypted in the vault_tokens table.
type SQLiteVault struct {
	db     *sql.DB
	cipher *Cipher
}

// NewSQLite creates a vault on an initialized database
func NewSQLite(db *sql.DB, cipher *Cipher) *SQLiteVault {
	return &SQLiteVault{db: db, cipher: cipher}
}

// Set encrypts and stores secret under a new handle.
func (v *SQLiteVault) Set(secret string) (string, error) {
	handle := uuid.NewString()

	ciphertext, nonce, err := v.cipher.Seal(handle, []byte(secret))
	if err != nil {
		return "", err
	}

	_, err = v.db.Exec(`
		INSERT INTO vault_tokens (handle, ciphertext, nonce, created_at)
		VALUES (?, ?, ?, ?)
	`, handle, ciphertext, nonce, time.Now().UTC().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	log.Debug().Str("handle", handle).Msg("Stored token")
	return handle, nil
}

// Get returns the secret stored under handle.
func (v *SQLiteVault) Get(handle string) (string, error) {
	var ciphertext, nonce []byte
	err := v.db.QueryRow(`
		SELECT ciphertext, nonce FROM vault_tokens WHERE handle = ?
	`, handle).Scan(&ciphertext, &nonce)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}

	plaintext, err := v.cipher.Open(handle, ciphertext, nonce)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Delete removes handle. Unknown handles are not an error.
func (v *SQLiteVault) Delete(handle string) error {
	if _, err := v.db.Exec(`DELETE FROM vault_tokens WHERE handle = ?`, handle); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	log.Debug().Str("handle", handle).Msg("Deleted token")
	return nil
}

// MemoryVault is an unencrypted, in-process vault.
type MemoryVault struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemory creates an empty in-memory vault
func NewMemory() *MemoryVault {
	return &MemoryVault{secrets: make(map[string]string)}
}

// Set stores secret under a new handle.
func (v *MemoryVault) Set(secret string) (string, error) {
	handle := uuid.NewString()

	v.mu.Lock()
	v.secrets[handle] = secret
	v.mu.Unlock()

	return handle, nil
}

// Get returns the secret stored under handle.
func (v *MemoryVault) Get(handle string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	secret, ok := v.secrets[handle]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

// Delete removes handle.
func (v *MemoryVault) Delete(handle string) error {
	v.mu.Lock()
	delete(v.secrets, handle)
	v.mu.Unlock()
	return nil
}
