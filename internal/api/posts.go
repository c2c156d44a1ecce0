package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"audioblog-go/internal/export"
	"audioblog-go/internal/types"
)

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.List(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (s *Server) handleSavePost(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "save-post")

	var post types.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if post.ID == "" {
		badRequest(w, "post id is required")
		return
	}

	if err := s.posts.Save(r.Context(), &post); err != nil {
		log.WithError(err).Error("save failed")
		s.writeErr(w, err)
		return
	}
	log.WithField("post_id", post.ID).Info("post saved")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": post.ID})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.posts.Delete(r.Context(), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.log.WithRequest(r).WithField("post_id", id).Info("post deleted")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handlePostGenerate runs the generation stage for a stored transcript-only
// post and persists the resulting article.
func (s *Server) handlePostGenerate(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r).WithField("handler", "post-generate")

	id := r.PathValue("id")
	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if post.Transcript == "" {
		badRequest(w, "post has no transcript")
		return
	}

	var req struct {
		Prompt string `json:"prompt,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	article, err := s.runner.GenerateArticle(r.Context(), post.Transcript, req.Prompt)
	if err != nil {
		log.WithError(err).WithField("post_id", id).Warn("generation failed")
		s.writeErr(w, err)
		return
	}

	post.Article = article
	post.Title = article.Headline
	if err := s.posts.Save(r.Context(), post); err != nil {
		log.WithError(err).Error("saving generated article failed")
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}

	doc, err := export.PrintableHTML(post)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(doc))
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.List(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "posts-report.xlsx"))
	if err := export.WriteReport(posts, w); err != nil {
		s.log.WithRequest(r).WithError(err).Error("report export failed")
	}
}
