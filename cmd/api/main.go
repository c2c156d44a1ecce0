package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"audioblog-go/internal/api"
	"audioblog-go/internal/chunkstore"
	"audioblog-go/internal/config"
	"audioblog-go/internal/generation"
	"audioblog-go/internal/logger"
	"audioblog-go/internal/pipeline"
	"audioblog-go/internal/poststore"
	"audioblog-go/internal/reassembler"
	"audioblog-go/internal/source"
	"audioblog-go/internal/transcription"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "audioblog-go").Info("starting service")

	cfg := config.Load()
	ctx := context.Background()

	chunks, err := buildChunkStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to init chunk store")
	}
	log.WithField("chunk_backend", cfg.ChunkBackend).Info("chunk store ready")

	posts, err := buildPostStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to init post store")
	}
	log.WithField("post_backend", cfg.PostBackend).Info("post store ready")

	// adapters are constructed once and injected; credentials are checked
	// at the first attempted call, not here
	transcriber := transcription.NewDeepgram(cfg.DeepgramAPIKey, cfg.CallTimeout, log)
	generator := generation.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Language, log)
	resolver := source.NewResolver(log, source.NewOEmbed(),
		source.NewPlayerStrategy(source.AndroidProfile, cfg.SourceCookies),
		source.NewPlayerStrategy(source.WebProfile, cfg.SourceCookies),
	)

	runner := pipeline.NewRunner(
		reassembler.New(chunks, log),
		transcriber, generator, resolver,
		"", cfg.Language, cfg.CallTimeout, log,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      api.NewServer(chunks, runner, posts, log).Routes(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute, // transcription and generation are slow
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func buildChunkStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (chunkstore.Store, error) {
	switch cfg.ChunkBackend {
	case "s3":
		return chunkstore.NewS3Store(ctx, cfg.ChunkBucket, log)
	default:
		return chunkstore.NewFSStore(filepath.Join(cfg.DataDir, "chunks"), log)
	}
}

func buildPostStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (poststore.Store, error) {
	switch cfg.PostBackend {
	case "postgres":
		return poststore.NewPGStore(ctx, cfg.DatabaseURL)
	default:
		return poststore.NewFSStore(cfg.DataDir, log)
	}
}
