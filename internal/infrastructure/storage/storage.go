package storage

import (
	"context"
	"errors"
)

// ErrUnavailable marks failures of the object store itself (network, auth,
// open breaker) as opposed to bad input.
var ErrUnavailable = errors.New("object storage unavailable")

// ObjectStore stores bytes under a key and hands back a public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object behind a URL previously returned by Put.
	// URLs that do not belong to the store are ignored.
	Delete(ctx context.Context, url string) error
}
