package config

import (
	"fmt"
	"os"
	"time"
)

// MissingCredentialError reports which required credential is absent, so a
// misconfigured deployment fails at the first attempted provider call instead
// of deep inside provider internals.
type MissingCredentialError struct {
	Which string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential: %s is not set", e.Which)
}

// Config carries all environment-level settings. Credentials are kept as raw
// strings and checked lazily by the adapters that need them.
type Config struct {
	Port string

	DeepgramAPIKey string
	GeminiAPIKey   string
	GeminiModel    string

	// Default language hint passed to transcription
	Language string

	// Netscape cookie material for remote-source resolution, optional
	SourceCookies string

	// chunk store: "fs" (scratch dir) or "s3"
	ChunkBackend string
	ChunkBucket  string

	// post store: "fs" or "postgres"
	PostBackend string
	DatabaseURL string
	DataDir     string

	// Upper bound for one external call; transcription and generation are
	// minutes-slow by nature.
	CallTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:           envOr("PORT", "8080"),
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		Language:       envOr("TRANSCRIBE_LANGUAGE", "tr"),
		SourceCookies:  os.Getenv("SOURCE_COOKIES"),
		ChunkBackend:   envOr("CHUNK_BACKEND", "fs"),
		ChunkBucket:    os.Getenv("CHUNK_BUCKET"),
		PostBackend:    envOr("POST_BACKEND", "fs"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DataDir:        envOr("DATA_DIR", "data"),
		CallTimeout:    5 * time.Minute,
	}
	if v := os.Getenv("CALL_TIMEOUT_SEC"); v != "" {
		var sec int
		fmt.Sscanf(v, "%d", &sec)
		if sec > 0 {
			cfg.CallTimeout = time.Duration(sec) * time.Second
		}
	}
	return cfg
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
