// Package kv provides the namespaced key-value store plugins persist their settings in.
package kv

// Bucket is a namespace of JSON values.
// Values come back the way encoding/json decodes them: strings, float64, bool, nil,
// []any and map[string]any.
type Bucket interface {
	// Name returns the bucket name.
	Name() string

	// IsPersistent returns true if the bucket survives restarts.
	IsPersistent() bool

	// Get retrieves a value by key. Returns nil if the key doesn't exist.
	Get(key string) (any, error)

	// Set saves a value with the given key.
	Set(key string, value any) error

	// Delete removes a key from the bucket.
	// Returns true if the key existed.
	Delete(key string) (bool, error)

	// Keys returns all keys in the bucket.
	Keys() ([]string, error)

	// Clear removes all keys from the bucket.
	Clear() error
}
