package poststore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"audioblog-go/internal/types"
)

// PGStore persists posts in a single Postgres table. Used when posts must
// outlive the instance's disk.
type PGStore struct {
	pool *pgxpool.Pool
}

const postsSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	source_url       TEXT NOT NULL DEFAULT '',
	transcript       TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	meta_title       TEXT,
	meta_description TEXT,
	slug             TEXT,
	keywords         TEXT[],
	body_html        TEXT
)`

func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure posts table: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

func (s *PGStore) Save(ctx context.Context, post *types.Post) error {
	var metaTitle, metaDesc, slug, body *string
	var keywords []string
	if post.Article != nil {
		metaTitle = &post.Article.MetaTitle
		metaDesc = &post.Article.MetaDescription
		slug = &post.Article.Slug
		body = &post.Article.BodyHTML
		keywords = post.Article.Keywords
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (id, title, source_url, transcript, created_at,
			meta_title, meta_description, slug, keywords, body_html)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			transcript = EXCLUDED.transcript,
			meta_title = EXCLUDED.meta_title,
			meta_description = EXCLUDED.meta_description,
			slug = EXCLUDED.slug,
			keywords = EXCLUDED.keywords,
			body_html = EXCLUDED.body_html`,
		post.ID, post.Title, post.SourceURL, post.Transcript, post.CreatedAt,
		metaTitle, metaDesc, slug, keywords, body)
	return err
}

func (s *PGStore) Get(ctx context.Context, id string) (*types.Post, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, source_url, transcript, created_at,
			meta_title, meta_description, slug, keywords, body_html
		FROM posts WHERE id = $1`, id)

	post, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return post, err
}

func (s *PGStore) List(ctx context.Context) ([]*types.Post, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, source_url, transcript, created_at,
			meta_title, meta_description, slug, keywords, body_html
		FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*types.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (*types.Post, error) {
	var post types.Post
	var metaTitle, metaDesc, slug, body *string
	var keywords []string

	err := row.Scan(&post.ID, &post.Title, &post.SourceURL, &post.Transcript,
		&post.CreatedAt, &metaTitle, &metaDesc, &slug, &keywords, &body)
	if err != nil {
		return nil, err
	}

	if slug != nil {
		post.Article = &types.Article{
			MetaTitle:       deref(metaTitle),
			MetaDescription: deref(metaDesc),
			Slug:            deref(slug),
			Headline:        post.Title,
			Keywords:        keywords,
			BodyHTML:        deref(body),
		}
	}
	return &post, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
