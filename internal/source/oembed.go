package source

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"audioblog-go/internal/types"
)

const oembedURL = "https://www.youtube.com/oembed"

// OEmbed fetches title/channel/thumbnail through the public oEmbed endpoint.
// It can never produce audio, only metadata, which makes it the lookup of
// last resort for display information when extraction itself is blocked.
type OEmbed struct {
	baseURL string
	client  *http.Client
}

func NewOEmbed() *OEmbed {
	return &OEmbed{baseURL: oembedURL, client: &http.Client{Timeout: 15 * time.Second}}
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (o *OEmbed) Metadata(ctx context.Context, videoURL string) (*types.VideoMeta, error) {
	q := url.Values{}
	q.Set("url", videoURL)
	q.Set("format", "json")
	endpoint := o.baseURL + "?" + q.Encode()

	build := func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	}

	var parsed oembedResponse
	if err := doJSON(ctx, o.client, build, &parsed); err != nil {
		return nil, err
	}

	return &types.VideoMeta{
		Title:     parsed.Title,
		Channel:   parsed.AuthorName,
		Thumbnail: parsed.ThumbnailURL,
	}, nil
}
