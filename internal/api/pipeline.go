package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

type pipelineRequest struct {
	FileBase64 string `json:"fileBase64,omitempty"`
	FileName   string `json:"fileName,omitempty"`
	URL        string `json:"url,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
}

// handlePipeline runs the full pipeline from either a direct upload
// (fileBase64) or a remote video URL. Exactly one ingestion path must be
// chosen.
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "pipeline")

	var req pipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	switch {
	case req.FileBase64 != "" && req.URL != "":
		badRequest(w, "provide either fileBase64 or url, not both")
	case req.FileBase64 != "":
		audio, err := base64.StdEncoding.DecodeString(req.FileBase64)
		if err != nil {
			badRequest(w, "fileBase64 is not valid base64")
			return
		}
		log.WithField("bytes", len(audio)).Info("pipeline run from upload")
		res, err := s.runner.RunBytes(r.Context(), audio, req.FileName, req.Prompt)
		if err != nil {
			log.WithError(err).Warn("pipeline run failed")
			s.writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case req.URL != "":
		log.WithField("url", req.URL).Info("pipeline run from url")
		res, err := s.runner.RunURL(r.Context(), req.URL, req.Prompt)
		if err != nil {
			log.WithError(err).Warn("pipeline run failed")
			s.writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	default:
		badRequest(w, "fileBase64 or url is required")
	}
}

type generateRequest struct {
	Transcript string `json:"transcript"`
	Prompt     string `json:"prompt,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "generate")

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Transcript == "" {
		badRequest(w, "transcript is required")
		return
	}

	log.WithField("transcript_len", len(req.Transcript)).Info("generating article")

	article, err := s.runner.GenerateArticle(r.Context(), req.Transcript, req.Prompt)
	if err != nil {
		log.WithError(err).Warn("generation failed")
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}
