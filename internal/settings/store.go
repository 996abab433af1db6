package settings

import "context"

// Store is a key-value store for schedule records
type Store interface {
	// Get returns the record stored under key, or an error matching ErrNotFound
	Get(ctx context.Context, key string) (*Record, error)

	// Put replaces the record stored under key
	Put(ctx context.Context, key string, record Record) error
}
