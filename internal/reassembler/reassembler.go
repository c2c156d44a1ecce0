// Package reassembler turns the chunk set of one upload session back into the
// original byte stream. One invocation consumes the session: the merged file
// is written to a scratch location and the source chunks are deleted.
package reassembler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"audioblog-go/internal/chunkstore"
	"audioblog-go/internal/logger"
)

// ErrNoChunks means nothing at all was stored for the uploadID, as opposed to
// a partial set with a gap in it.
var ErrNoChunks = errors.New("no chunks found for upload")

type Reassembler struct {
	store chunkstore.Store
	log   *logger.Logger
}

func New(store chunkstore.Store, log *logger.Logger) *Reassembler {
	return &Reassembler{store: store, log: log}
}

// Merge fetches chunks 0..totalChunks-1 for uploadID, concatenates them in
// index order into destPath and deletes the source chunks. A missing index is
// fatal; the caller must re-upload it, no chunk-level retry happens here.
// Fetches run concurrently but concatenation order is always index order.
func (r *Reassembler) Merge(ctx context.Context, uploadID string, totalChunks int, destPath string) (int64, error) {
	log := r.log.WithField("upload_id", uploadID)

	refs, err := r.store.List(ctx, uploadID)
	if err != nil {
		return 0, err
	}
	if len(refs) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoChunks, uploadID)
	}

	present := make(map[int]bool, len(refs))
	for _, ref := range refs {
		present[ref.Index] = true
	}
	for i := 0; i < totalChunks; i++ {
		if !present[i] {
			return 0, &chunkstore.MissingError{UploadID: uploadID, Index: i}
		}
	}

	log.WithField("chunks", totalChunks).Info("merging chunks")

	// fetch concurrently into an index-addressed slice; arrival order is
	// irrelevant, write order below is not
	parts := make([][]byte, totalChunks)
	errs := make([]error, totalChunks)
	var wg sync.WaitGroup
	for i := 0; i < totalChunks; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			parts[idx], errs[idx] = r.store.Get(ctx, uploadID, idx)
		}(i)
	}
	wg.Wait()

	for i := 0; i < totalChunks; i++ {
		if errs[i] != nil {
			// no partial merge is ever produced
			return 0, errs[i]
		}
	}

	f, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("create merge target: %w", err)
	}
	defer f.Close()

	var total int64
	for i := 0; i < totalChunks; i++ {
		n, err := f.Write(parts[i])
		if err != nil {
			return 0, fmt.Errorf("write chunk %d: %w", i, err)
		}
		total += int64(n)
	}

	log.WithField("total_bytes", total).Info("chunks merged")

	// best-effort cleanup; leftover chunks never block a successful merge
	if err := r.store.DeleteAll(ctx, uploadID); err != nil {
		log.WithError(err).Warn("leftover chunks not deleted")
	}

	return total, nil
}
