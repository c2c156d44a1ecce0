// Package source resolves a remote video URL to a downloadable audio stream.
// Any single extraction strategy may be blocked or rate-limited at any time,
// so resolution walks an ordered chain of independent strategies and the
// first usable audio locator wins.
//
// Metadata lookup is a separate failure domain: title/channel/thumbnail may
// resolve even when no audio stream can be extracted, and vice versa.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"audioblog-go/internal/logger"
	"audioblog-go/internal/types"
)

// ErrUnresolvable means every strategy in the chain was exhausted without
// producing a usable audio locator.
var ErrUnresolvable = errors.New("no strategy could resolve an audio stream")

// AudioLocator is a directly fetchable audio stream.
type AudioLocator struct {
	URL      string
	MimeType string
	Bitrate  int
}

// Strategy is one way of turning a video URL into an audio locator.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, videoURL string) (*AudioLocator, error)
}

// MetadataFetcher supplies title/channel/thumbnail independently of audio
// extraction.
type MetadataFetcher interface {
	Metadata(ctx context.Context, videoURL string) (*types.VideoMeta, error)
}

// Resolver tries each strategy in order.
type Resolver struct {
	strategies []Strategy
	meta       MetadataFetcher
	log        *logger.Logger
}

func NewResolver(log *logger.Logger, meta MetadataFetcher, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, meta: meta, log: log}
}

// ResolveAudio walks the strategy chain and returns the first usable locator.
func (r *Resolver) ResolveAudio(ctx context.Context, videoURL string) (*AudioLocator, error) {
	log := r.log.WithField("module", "source")

	var attempts []string
	for _, s := range r.strategies {
		loc, err := s.Resolve(ctx, videoURL)
		if err != nil {
			log.WithError(err).WithField("strategy", s.Name()).Warn("strategy failed")
			attempts = append(attempts, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		log.WithField("strategy", s.Name()).Info("audio stream resolved")
		return loc, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnresolvable, strings.Join(attempts, "; "))
}

// Metadata looks up video metadata. A metadata success never stands in for a
// failed audio resolution; callers treat the two independently.
func (r *Resolver) Metadata(ctx context.Context, videoURL string) (*types.VideoMeta, error) {
	if r.meta == nil {
		return nil, errors.New("no metadata fetcher configured")
	}
	return r.meta.Metadata(ctx, videoURL)
}

// videoID extracts the id from the usual URL shapes:
// watch?v=ID, youtu.be/ID, shorts/ID, embed/ID.
func videoID(videoURL string) (string, error) {
	for _, marker := range []string{"watch?v=", "youtu.be/", "shorts/", "embed/"} {
		if _, rest, ok := strings.Cut(videoURL, marker); ok {
			id := rest
			if i := strings.IndexAny(id, "?&/"); i >= 0 {
				id = id[:i]
			}
			if id != "" {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("could not extract video id from %q", videoURL)
}
