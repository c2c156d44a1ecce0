package chunkstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"audioblog-go/internal/logger"
)

// FSStore keeps chunks as chunk_<index>.bin files under <root>/<uploadID>/.
// Default backend; the root is normally a scratch directory.
type FSStore struct {
	root string
	log  *logger.Logger
}

func NewFSStore(root string, log *logger.Logger) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &FSStore{root: root, log: log}, nil
}

func (s *FSStore) dir(uploadID string) string {
	return filepath.Join(s.root, uploadID)
}

func (s *FSStore) path(uploadID string, index int) string {
	return filepath.Join(s.dir(uploadID), fmt.Sprintf("chunk_%d.bin", index))
}

func (s *FSStore) Put(ctx context.Context, uploadID string, index int, data []byte) error {
	if err := os.MkdirAll(s.dir(uploadID), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.WriteFile(s.path(uploadID, index), data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.log.WithFields(map[string]interface{}{
		"upload_id": uploadID,
		"chunk":     index,
		"bytes":     len(data),
	}).Debug("chunk stored")
	return nil
}

func (s *FSStore) List(ctx context.Context, uploadID string) ([]Ref, error) {
	entries, err := os.ReadDir(s.dir(uploadID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var refs []Ref
	for _, e := range entries {
		idx, ok := parseChunkIndex(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		refs = append(refs, Ref{Index: idx, Key: e.Name(), Size: info.Size()})
	}

	// directory listings come back lexicographic; order by numeric index
	sort.Slice(refs, func(i, j int) bool { return refs[i].Index < refs[j].Index })
	return refs, nil
}

func (s *FSStore) Get(ctx context.Context, uploadID string, index int) ([]byte, error) {
	data, err := os.ReadFile(s.path(uploadID, index))
	if os.IsNotExist(err) {
		return nil, &MissingError{UploadID: uploadID, Index: index}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (s *FSStore) Delete(ctx context.Context, uploadID string, index int) error {
	if err := os.Remove(s.path(uploadID, index)); err != nil && !os.IsNotExist(err) {
		// best-effort: stray chunks are acceptable leakage
		s.log.WithError(err).WithField("upload_id", uploadID).Warn("chunk delete failed")
		return err
	}
	return nil
}

func (s *FSStore) DeleteAll(ctx context.Context, uploadID string) error {
	if err := os.RemoveAll(s.dir(uploadID)); err != nil {
		s.log.WithError(err).WithField("upload_id", uploadID).Warn("chunk cleanup failed")
		return err
	}
	return nil
}

// parseChunkIndex extracts n from "chunk_<n>.bin".
func parseChunkIndex(name string) (int, bool) {
	name = strings.TrimSuffix(name, ".bin")
	rest, ok := strings.CutPrefix(name, "chunk_")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return idx, true
}
