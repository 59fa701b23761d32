// Package localstore defines the key-value blob port the repository persists
// through: get/set of a named JSON blob, single-key atomic replace, nothing
// more.
package localstore

import "context"

type Store interface {
	// Get returns the blob stored under key, or (nil, nil) if the key has
	// never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the blob stored under key.
	Set(ctx context.Context, key string, value []byte) error
}
