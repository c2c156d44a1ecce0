// Package api exposes the pipeline over HTTP. The transport layer owns wire
// concerns: chunk payloads arrive base64-encoded and are decoded here, so the
// core below only ever sees raw bytes.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"audioblog-go/internal/chunkstore"
	"audioblog-go/internal/config"
	"audioblog-go/internal/logger"
	"audioblog-go/internal/pipeline"
	"audioblog-go/internal/poststore"
)

type Server struct {
	chunks chunkstore.Store
	runner *pipeline.Runner
	posts  poststore.Store
	log    *logger.Logger
}

func NewServer(chunks chunkstore.Store, runner *pipeline.Runner, posts poststore.Store, log *logger.Logger) *Server {
	return &Server{chunks: chunks, runner: runner, posts: posts, log: log}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /upload/chunk", s.handleUploadChunk)
	mux.HandleFunc("POST /upload/finalize", s.handleFinalize)

	mux.HandleFunc("POST /pipeline", s.handlePipeline)
	mux.HandleFunc("POST /generate", s.handleGenerate)

	mux.HandleFunc("GET /posts", s.handleListPosts)
	mux.HandleFunc("POST /posts", s.handleSavePost)
	mux.HandleFunc("GET /posts/{id}", s.handleGetPost)
	mux.HandleFunc("DELETE /posts/{id}", s.handleDeletePost)
	mux.HandleFunc("POST /posts/{id}/generate", s.handlePostGenerate)

	mux.HandleFunc("GET /posts/{id}/export/html", s.handleExportHTML)
	mux.HandleFunc("GET /export/report", s.handleExportReport)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

type errorResponse struct {
	Error      string `json:"error"`
	Stage      string `json:"stage,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// writeErr maps the error taxonomy onto HTTP. Stage and provider detail are
// passed through so operators can tell quota exhaustion from bad credentials.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var stageErr *pipeline.StageError
	var missingCred *config.MissingCredentialError
	switch {
	case errors.As(err, &stageErr):
		resp.Stage = string(stageErr.Stage)
		resp.Transcript = stageErr.Transcript
		var chunkMissing *chunkstore.MissingError
		if errors.As(err, &chunkMissing) {
			status = http.StatusBadRequest
		}
	case errors.As(err, &missingCred):
		// configuration error, fatal, never retried
		status = http.StatusInternalServerError
	case errors.Is(err, poststore.ErrNotFound):
		status = http.StatusNotFound
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
