package reassembler

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"audioblog-go/internal/chunkstore"
	"audioblog-go/internal/logger"
)

func newStore(t *testing.T) chunkstore.Store {
	t.Helper()
	s, err := chunkstore.NewFSStore(t.TempDir(), logger.New())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	return s
}

func TestMerge_PreservesOrderAcrossArrivalOrder(t *testing.T) {
	store := newStore(t)
	r := New(store, logger.New())
	ctx := context.Background()

	// 13 chunks exercise the two-digit-index ordering; submission order is
	// shuffled so arrival order never matches index order
	const n = 13
	chunks := make([][]byte, n)
	var want []byte
	for i := 0; i < n; i++ {
		chunks[i] = bytes.Repeat([]byte{byte(i + 1)}, 50+i)
		want = append(want, chunks[i]...)
	}
	order := rand.Perm(n)
	for _, idx := range order {
		if err := store.Put(ctx, "up1", idx, chunks[idx]); err != nil {
			t.Fatalf("Put(%d): %v", idx, err)
		}
	}

	dest := filepath.Join(t.TempDir(), "merged.bin")
	total, err := r.Merge(ctx, "up1", n, dest)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if total != int64(len(want)) {
		t.Errorf("total = %d, want %d", total, len(want))
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("merged bytes do not match original order")
	}
}

func TestMerge_ConcatenatesByIndex(t *testing.T) {
	store := newStore(t)
	r := New(store, logger.New())
	ctx := context.Background()

	c0 := bytes.Repeat([]byte{'a'}, 1000)
	c1 := bytes.Repeat([]byte{'b'}, 1000)
	c2 := bytes.Repeat([]byte{'c'}, 500)

	// submitted out of order: 1, 0, 2
	for _, p := range []struct {
		idx  int
		data []byte
	}{{1, c1}, {0, c0}, {2, c2}} {
		if err := store.Put(ctx, "up1", p.idx, p.data); err != nil {
			t.Fatalf("Put(%d): %v", p.idx, err)
		}
	}

	dest := filepath.Join(t.TempDir(), "merged.bin")
	total, err := r.Merge(ctx, "up1", 3, dest)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if total != 2500 {
		t.Errorf("total = %d, want 2500", total)
	}

	got, _ := os.ReadFile(dest)
	want := append(append(append([]byte{}, c0...), c1...), c2...)
	if !bytes.Equal(got, want) {
		t.Error("merged buffer != chunk0 || chunk1 || chunk2")
	}
}

func TestMerge_MissingChunkIsFatal(t *testing.T) {
	store := newStore(t)
	r := New(store, logger.New())
	ctx := context.Background()

	store.Put(ctx, "up1", 0, []byte("aa"))
	store.Put(ctx, "up1", 2, []byte("cc")) // index 1 missing

	dest := filepath.Join(t.TempDir(), "merged.bin")
	_, err := r.Merge(ctx, "up1", 3, dest)

	var missing *chunkstore.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if missing.Index != 1 {
		t.Errorf("missing.Index = %d, want 1", missing.Index)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("no merged output should exist after a failed reassembly")
	}
}

func TestMerge_NoChunks(t *testing.T) {
	store := newStore(t)
	r := New(store, logger.New())

	_, err := r.Merge(context.Background(), "empty-upload", 2, filepath.Join(t.TempDir(), "m.bin"))
	if !errors.Is(err, ErrNoChunks) {
		t.Fatalf("expected ErrNoChunks, got %v", err)
	}
}

func TestMerge_DeletesSourceChunks(t *testing.T) {
	store := newStore(t)
	r := New(store, logger.New())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		store.Put(ctx, "up1", i, []byte{byte(i)})
	}

	if _, err := r.Merge(ctx, "up1", 3, filepath.Join(t.TempDir(), "m.bin")); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	refs, err := store.List(ctx, "up1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected chunks deleted after merge, %d remain", len(refs))
	}
}
