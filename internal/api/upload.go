package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

type uploadChunkRequest struct {
	UploadID    string `json:"uploadId"`
	ChunkIndex  *int   `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
	Data        string `json:"data"`
}

func (s *Server) handleUploadChunk(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "upload-chunk")

	var req uploadChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.UploadID == "" || req.ChunkIndex == nil || req.Data == "" {
		badRequest(w, "uploadId, chunkIndex and data are required")
		return
	}

	// wire encoding stops at this boundary; the store takes raw bytes
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		badRequest(w, "data is not valid base64")
		return
	}
	if len(data) == 0 {
		badRequest(w, "chunk payload is empty")
		return
	}

	log.WithFields(map[string]interface{}{
		"upload_id": req.UploadID,
		"chunk":     *req.ChunkIndex,
		"of":        req.TotalChunks,
		"bytes":     len(data),
	}).Info("receiving chunk")

	if err := s.chunks.Put(r.Context(), req.UploadID, *req.ChunkIndex, data); err != nil {
		log.WithError(err).Error("chunk store put failed")
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"chunkIndex":    *req.ChunkIndex,
		"bytesReceived": len(data),
	})
}

type finalizeRequest struct {
	UploadID    string `json:"uploadId"`
	TotalChunks int    `json:"totalChunks"`
	FileName    string `json:"fileName"`
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "finalize")

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.UploadID == "" || req.TotalChunks <= 0 {
		badRequest(w, "uploadId and totalChunks are required")
		return
	}

	log.WithField("upload_id", req.UploadID).Info("finalize requested")

	res, err := s.runner.FinalizeUpload(r.Context(), req.UploadID, req.TotalChunks, req.FileName)
	if err != nil {
		log.WithError(err).Warn("finalize failed")
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
