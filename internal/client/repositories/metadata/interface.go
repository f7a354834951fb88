// Package metadata is the local key/value store of the client. It holds the
// session token, the serialized user record and the current brand selection.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value store.
//
// Get returns (nil, nil) for a missing key. Set overwrites an existing value.
// Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
