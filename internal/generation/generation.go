// Package generation wraps the remote generative-text call that turns a
// transcript into a structured, SEO-formatted article. The six-field output
// schema is a hard contract: near-miss formatting is repaired, missing fields
// are not.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"audioblog-go/internal/types"
)

// ErrMalformed marks a response that could not be parsed into a complete
// article: broken JSON or a required field absent.
var ErrMalformed = errors.New("malformed generation response")

// ProviderError preserves the provider-reported failure verbatim, so quota
// and auth problems stay distinguishable for operators.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Generator produces a structured article from a transcript. extraPrompt is
// an optional user addendum appended verbatim to the instruction template.
type Generator interface {
	Generate(ctx context.Context, transcript, extraPrompt string) (*types.Article, error)
}

// ParseArticle decodes a model response into an Article. Models are asked for
// bare JSON but are not contractually guaranteed to omit markdown fences, so
// any enclosing fence markers are stripped before parsing. Every required
// field is then checked.
func ParseArticle(raw string) (*types.Article, error) {
	text := strings.TrimSpace(raw)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var a types.Article
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var missing []string
	if a.MetaTitle == "" {
		missing = append(missing, "metaTitle")
	}
	if a.MetaDescription == "" {
		missing = append(missing, "metaDescription")
	}
	if a.Slug == "" {
		missing = append(missing, "slug")
	}
	if a.Headline == "" {
		missing = append(missing, "headline")
	}
	if len(a.Keywords) == 0 {
		missing = append(missing, "keywords")
	}
	if a.BodyHTML == "" {
		missing = append(missing, "bodyHtml")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %s", ErrMalformed, strings.Join(missing, ", "))
	}

	return &a, nil
}
