// Package chunkstore holds uploaded byte ranges keyed by (uploadID, index)
// until reassembly claims them. Chunks are scratch space: append-only writes,
// read-once-then-delete lifecycle, no durability across restarts.
//
// Caller contract: once finalization has been requested for an uploadID, no
// further Put calls may be issued for that uploadID. The store does not lock
// against this.
package chunkstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable signals the backing storage itself could not be reached.
var ErrUnavailable = errors.New("chunk store unavailable")

// MissingError reports a chunk index that was expected but not found.
type MissingError struct {
	UploadID string
	Index    int
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("chunk %d missing for upload %s", e.Index, e.UploadID)
}

// Ref locates one stored chunk.
type Ref struct {
	Index int
	Key   string
	Size  int64
}

// Store is the chunk persistence contract. Put is idempotent by overwrite:
// re-sending an index replaces the previous bytes. List must return refs in
// ascending numeric index order even when the backend's natural listing is
// lexicographic ("10" sorts before "2" as a string).
type Store interface {
	Put(ctx context.Context, uploadID string, index int, data []byte) error
	List(ctx context.Context, uploadID string) ([]Ref, error)
	Get(ctx context.Context, uploadID string, index int) ([]byte, error)
	Delete(ctx context.Context, uploadID string, index int) error
	DeleteAll(ctx context.Context, uploadID string) error
}
