// Package metadata provides the key/value store the authentication gate
// persists its state in. Values are opaque byte slices.
package metadata

import (
	"context"
)

// Repository is a flat key/value store.
//
// Get returns (nil, nil) when the key does not exist. Delete of a missing key
// is not an error. No atomicity is promised across keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
