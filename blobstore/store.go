package blobstore

import (
	"context"
	"os"
	"strings"
)

// ErrNotFound is returned when a blob does not exist.
//
// The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// CurrentName is the blob holding the name of the latest published
// snapshot.
const CurrentName = "CURRENT"

// Store reads and writes whole blobs by name. Names use '/' as separator.
type Store interface {
	// Get returns the blob content.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put writes a blob, replacing any existing one. Readers never observe
	// a partially written blob.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

func hasPrefix(name, prefix string) bool {
	return prefix == "" || strings.HasPrefix(name, prefix)
}
