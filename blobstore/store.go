// Package blobstore abstracts off-box storage for database snapshots.
//
// A Store holds whole snapshot files as immutable named blobs. It is used
// for backup and restore of the local store file, not for serving live
// queries: the database itself always runs against local memory.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a named blob does not exist.
//
// Implementations must return an error satisfying
// errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("blob not found")

// Store is an abstraction for reading and writing snapshot blobs.
type Store interface {
	// Put writes a blob, replacing any existing blob with the same name.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a whole blob.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a blob. Deleting an absent blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of blobs starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
