package poststore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"audioblog-go/internal/logger"
	"audioblog-go/internal/types"
)

// FSStore keeps one directory per post under <root>/posts/<id>/:
// meta.json for the metadata, transcript.txt and article.html alongside so
// the large text bodies stay greppable on disk.
type FSStore struct {
	root string
	log  *logger.Logger
}

func NewFSStore(root string, log *logger.Logger) (*FSStore, error) {
	dir := filepath.Join(root, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("init post store: %w", err)
	}
	return &FSStore{root: dir, log: log}, nil
}

type fsMeta struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	SourceURL string   `json:"sourceUrl,omitempty"`
	CreatedAt string   `json:"createdAt"`
	MetaTitle string   `json:"metaTitle,omitempty"`
	MetaDesc  string   `json:"metaDescription,omitempty"`
	Slug      string   `json:"slug,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

func (s *FSStore) dir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *FSStore) Save(ctx context.Context, post *types.Post) error {
	dir := s.dir(post.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	meta := fsMeta{
		ID:        post.ID,
		Title:     post.Title,
		SourceURL: post.SourceURL,
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
	}
	article := ""
	if post.Article != nil {
		meta.MetaTitle = post.Article.MetaTitle
		meta.MetaDesc = post.Article.MetaDescription
		meta.Slug = post.Article.Slug
		meta.Keywords = post.Article.Keywords
		article = post.Article.BodyHTML
	}

	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), raw, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "transcript.txt"), []byte(post.Transcript), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "article.html"), []byte(article), 0o644)
}

func (s *FSStore) Get(ctx context.Context, id string) (*types.Post, error) {
	dir := s.dir(id)

	raw, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var meta fsMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("corrupt post meta %s: %w", id, err)
	}

	transcript, _ := os.ReadFile(filepath.Join(dir, "transcript.txt"))
	body, _ := os.ReadFile(filepath.Join(dir, "article.html"))

	return metaToPost(meta, string(transcript), string(body)), nil
}

func (s *FSStore) List(ctx context.Context) ([]*types.Post, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var posts []*types.Post
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		post, err := s.Get(ctx, e.Name())
		if err != nil {
			s.log.WithError(err).WithField("post_id", e.Name()).Warn("skipping unreadable post")
			continue
		}
		posts = append(posts, post)
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (s *FSStore) Delete(ctx context.Context, id string) error {
	if _, err := os.Stat(s.dir(id)); os.IsNotExist(err) {
		return ErrNotFound
	}
	return os.RemoveAll(s.dir(id))
}

func metaToPost(meta fsMeta, transcript, body string) *types.Post {
	post := &types.Post{
		ID:         meta.ID,
		Title:      meta.Title,
		SourceURL:  meta.SourceURL,
		Transcript: transcript,
	}
	post.CreatedAt, _ = time.Parse(time.RFC3339, meta.CreatedAt)
	if meta.Slug != "" || body != "" {
		post.Article = &types.Article{
			MetaTitle:       meta.MetaTitle,
			MetaDescription: meta.MetaDesc,
			Slug:            meta.Slug,
			Headline:        meta.Title,
			Keywords:        meta.Keywords,
			BodyHTML:        body,
		}
	}
	return post
}
