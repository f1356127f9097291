// Package session persists per-player data: live web sessions and save slots.
package session

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a store used before it was opened.
var ErrNotConfigured = errors.New("store is not configured")

// Store keeps values by id. Get reports false for ids it has never seen.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	NewID() string
}

// BlobStore holds opaque state snapshots.
type BlobStore = Store[[]byte]
