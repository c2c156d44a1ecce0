// Package pipeline sequences staging, transcription and article generation
// into one run with a single terminal outcome. Stages are strictly
// sequential; the orchestrator owns every temporary resource it stages and
// releases it on every exit path.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"audioblog-go/internal/generation"
	"audioblog-go/internal/logger"
	"audioblog-go/internal/reassembler"
	"audioblog-go/internal/source"
	"audioblog-go/internal/transcription"
	"audioblog-go/internal/types"
)

// Runner drives pipeline runs. All collaborators are injected so tests can
// substitute stubs without touching process-wide state.
type Runner struct {
	asm         *reassembler.Reassembler
	transcriber transcription.Transcriber
	generator   generation.Generator
	resolver    *source.Resolver

	scratchDir  string
	language    string
	callTimeout time.Duration
	log         *logger.Logger
}

func NewRunner(
	asm *reassembler.Reassembler,
	transcriber transcription.Transcriber,
	generator generation.Generator,
	resolver *source.Resolver,
	scratchDir, language string,
	callTimeout time.Duration,
	log *logger.Logger,
) *Runner {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	if callTimeout <= 0 {
		callTimeout = 5 * time.Minute
	}
	return &Runner{
		asm:         asm,
		transcriber: transcriber,
		generator:   generator,
		resolver:    resolver,
		scratchDir:  scratchDir,
		language:    language,
		callTimeout: callTimeout,
		log:         log,
	}
}

// FinalizeUpload reassembles a chunked upload and transcribes it. Article
// generation is deliberately deferred so the caller can review the transcript
// first; the result is transcript-only.
//
// Caller contract: no chunk uploads may be issued for uploadID once this has
// been called.
func (r *Runner) FinalizeUpload(ctx context.Context, uploadID string, totalChunks int, sourceName string) (*types.Result, error) {
	runID := uuid.New().String()
	log := r.log.WithRun(runID).WithField("upload_id", uploadID)
	start := time.Now()

	mergedPath := filepath.Join(r.scratchDir, fmt.Sprintf("merged-%s.mp3", runID))
	defer r.release(mergedPath)

	log.WithField("total_chunks", totalChunks).Info("finalizing upload")

	if _, err := r.asm.Merge(ctx, uploadID, totalChunks, mergedPath); err != nil {
		return nil, stageErr(StageStaging, err)
	}

	transcript, err := r.transcribe(ctx, mergedPath)
	if err != nil {
		return nil, stageErr(StageTranscription, err)
	}

	log.WithField("transcript_len", len(transcript)).Info("run completed, transcript only")

	return &types.Result{
		ID:         runID,
		Title:      titleFromFile(sourceName),
		Transcript: transcript,
		CreatedAt:  time.Now().UTC(),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// RunBytes drives the full pipeline for a directly uploaded audio payload.
func (r *Runner) RunBytes(ctx context.Context, audio []byte, fileName, prompt string) (*types.Result, error) {
	runID := uuid.New().String()
	log := r.log.WithRun(runID)
	start := time.Now()

	stagedPath := filepath.Join(r.scratchDir, fmt.Sprintf("upload-%s.mp3", runID))
	defer r.release(stagedPath)

	log.WithField("bytes", len(audio)).Info("staging uploaded audio")
	if err := os.WriteFile(stagedPath, audio, 0o644); err != nil {
		return nil, stageErr(StageStaging, err)
	}

	return r.run(ctx, runID, start, stagedPath, titleFromFile(fileName), prompt)
}

// RunURL drives the full pipeline for a remote video URL: resolve an audio
// stream, download it to scratch, then transcribe and generate. Metadata is
// fetched separately and only decorates the result; a metadata hit never
// substitutes for a failed audio resolution.
func (r *Runner) RunURL(ctx context.Context, videoURL, prompt string) (*types.Result, error) {
	runID := uuid.New().String()
	log := r.log.WithRun(runID).WithField("video_url", videoURL)
	start := time.Now()

	title := ""
	if meta, err := r.resolver.Metadata(ctx, videoURL); err != nil {
		log.WithError(err).Warn("metadata lookup failed")
	} else {
		title = meta.Title
	}

	locator, err := r.resolver.ResolveAudio(ctx, videoURL)
	if err != nil {
		return nil, stageErr(StageStaging, err)
	}

	stagedPath := filepath.Join(r.scratchDir, fmt.Sprintf("remote-%s.m4a", runID))
	defer r.release(stagedPath)

	n, err := source.Download(ctx, locator, stagedPath)
	if err != nil {
		return nil, stageErr(StageStaging, err)
	}
	log.WithField("bytes", n).Info("remote audio staged")

	res, err := r.run(ctx, runID, start, stagedPath, title, prompt)
	if err != nil {
		return nil, err
	}
	if res.Title == "" {
		res.Title = videoURL
	}
	return res, nil
}

// GenerateArticle runs the generation stage alone against an existing
// transcript, for results that were finalized transcript-only.
func (r *Runner) GenerateArticle(ctx context.Context, transcript, prompt string) (*types.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	article, err := r.generator.Generate(ctx, transcript, prompt)
	if err != nil {
		return nil, &StageError{Stage: StageGeneration, Err: err, Transcript: transcript}
	}
	return article, nil
}

// run executes the transcription and generation stages against one staged
// audio resource. The caller owns the staged file.
func (r *Runner) run(ctx context.Context, runID string, start time.Time, stagedPath, title, prompt string) (*types.Result, error) {
	log := r.log.WithRun(runID)

	transcript, err := r.transcribe(ctx, stagedPath)
	if err != nil {
		return nil, stageErr(StageTranscription, err)
	}
	log.WithField("transcript_len", len(transcript)).Info("transcription stage done")

	genCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	article, err := r.generator.Generate(genCtx, transcript, prompt)
	if err != nil {
		// the transcript survives a generation failure; only the temp
		// audio is discarded
		return nil, &StageError{Stage: StageGeneration, Err: err, Transcript: transcript}
	}
	log.WithField("slug", article.Slug).Info("generation stage done")

	if title == "" {
		title = article.Headline
	}

	return &types.Result{
		ID:         runID,
		Title:      title,
		Transcript: transcript,
		CreatedAt:  time.Now().UTC(),
		Article:    article,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (r *Runner) transcribe(ctx context.Context, stagedPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return r.transcriber.Transcribe(ctx, stagedPath, r.language)
}

// release removes a staged resource. Its own failure is logged and swallowed:
// cleanup must never mask or replace the run's outcome.
func (r *Runner) release(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.log.WithError(err).WithField("path", path).Warn("staged resource not removed")
	}
}

func titleFromFile(fileName string) string {
	if fileName == "" {
		return "Transcription"
	}
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
