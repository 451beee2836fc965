package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// KeyPrefix namespaces every key written by this cache so that clearing
// operations never touch unrelated data in a shared store.
const KeyPrefix = "f1cache:"

// ErrNotFound is returned by Store.Get when no entry exists for a key.
var ErrNotFound = errors.New("cachestore: key not found")

// Entry is a single cached API response. It is written only after a
// successful upstream fetch, and always as a whole (atomic replace), so a
// reader never observes a payload without its timestamp.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Age returns how long ago the entry was written, relative to now.
// Staleness is a read-time classification made by the caller; entries are
// never deleted by age.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// Store is the persistent key/value substrate the fetch engine writes
// through. Implementations serialize Entry values as JSON strings.
//
// Get returns ErrNotFound for absent keys; any other error indicates a
// genuine store problem. Callers on the fetch path treat both as a cache
// miss - store failures must never abort a fetch.
type Store interface {
	// Get retrieves the entry stored under key.
	Get(ctx context.Context, key string) (Entry, error)
	// Set stores an entry under key, replacing any previous value.
	Set(ctx context.Context, key string, entry Entry) error
	// ListKeys returns every stored key beginning with prefix.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// RemoveMany deletes the given keys. Missing keys are not an error.
	RemoveMany(ctx context.Context, keys []string) error
}
