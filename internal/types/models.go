package types

import "time"

// Article is the structured generation output. All six fields are required;
// a response missing any of them is rejected before it leaves the generation
// adapter.
type Article struct {
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	Slug            string   `json:"slug"`
	Headline        string   `json:"headline"`
	Keywords        []string `json:"keywords"`
	BodyHTML        string   `json:"bodyHtml"`
}

// Result is the terminal artifact of one pipeline run. Transcript is always
// set on success; the article fields are set only when the generation stage
// ran and completed.
type Result struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Transcript string    `json:"transcript"`
	CreatedAt  time.Time `json:"createdAt"`

	Article *Article `json:"article,omitempty"`

	DurationMs int64 `json:"duration_ms"`
}

// VideoMeta is title/channel/thumbnail information for a remote source. It is
// reported independently of audio resolution: metadata may be present even
// when no audio stream could be extracted.
type VideoMeta struct {
	Title     string `json:"title"`
	Channel   string `json:"channel,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  int    `json:"duration,omitempty"`
}

// Post is a persisted pipeline result owned by the post store collaborator.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	SourceURL  string    `json:"sourceUrl,omitempty"`
	Transcript string    `json:"transcript"`
	CreatedAt  time.Time `json:"createdAt"`

	Article *Article `json:"article,omitempty"`
}
