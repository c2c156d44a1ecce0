// Package transcription wraps the remote speech-to-text call behind one
// contract: audio file in, plain transcript out. Provider-specific failure
// detail is preserved verbatim; nothing is retried at this layer.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrEmptySource fails a run before any paid remote call is made: an empty
// staged file can never transcribe to anything.
var ErrEmptySource = errors.New("audio source is empty")

// ErrEmptyTranscript marks a remote call that succeeded but returned no text.
// A blank transcript can never produce a usable article, so it is a failure.
var ErrEmptyTranscript = errors.New("provider returned empty transcript")

// ProviderError carries the provider's own message so operators can tell
// quota exhaustion from bad credentials from a network timeout.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Transcriber converts the audio file at audioPath to plain text.
// languageHint may be empty; providers fall back to their default.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) (string, error)
}

// checkSource enforces the empty-source short-circuit shared by all adapters.
func checkSource(audioPath string) (int64, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return 0, fmt.Errorf("stat audio source: %w", err)
	}
	if info.Size() == 0 {
		return 0, ErrEmptySource
	}
	return info.Size(), nil
}
