// Package poststore persists pipeline results as posts. The pipeline treats
// persistence as a pure sink/source collaborator; it hands over a full result
// payload and reads it back by id.
package poststore

import (
	"context"
	"errors"

	"audioblog-go/internal/types"
)

var ErrNotFound = errors.New("post not found")

type Store interface {
	Save(ctx context.Context, post *types.Post) error
	Get(ctx context.Context, id string) (*types.Post, error)
	// List returns all posts, newest first.
	List(ctx context.Context) ([]*types.Post, error)
	Delete(ctx context.Context, id string) error
}
