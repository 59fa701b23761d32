// Package imagestore stores item photo payloads. An item's image field
// holds the opaque storage key returned by Save.
package imagestore

import (
	"context"
	"io"
)

type Store interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
