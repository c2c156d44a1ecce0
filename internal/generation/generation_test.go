package generation

import (
	"errors"
	"strings"
	"testing"
)

const validArticleJSON = `{
	"metaTitle": "Test Meta Title",
	"metaDescription": "A compelling description of the article.",
	"slug": "test-meta-title",
	"headline": "The Headline",
	"keywords": ["go", "audio", "seo"],
	"bodyHtml": "<p>Intro</p><h2>Section</h2><p>Body</p>"
}`

func TestParseArticle_Valid(t *testing.T) {
	a, err := ParseArticle(validArticleJSON)
	if err != nil {
		t.Fatalf("ParseArticle: %v", err)
	}
	if a.MetaTitle != "Test Meta Title" {
		t.Errorf("MetaTitle = %q", a.MetaTitle)
	}
	if a.Slug != "test-meta-title" {
		t.Errorf("Slug = %q", a.Slug)
	}
	if len(a.Keywords) != 3 {
		t.Errorf("Keywords = %v", a.Keywords)
	}
}

func TestParseArticle_StripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validArticleJSON + "\n```"

	got, err := ParseArticle(fenced)
	if err != nil {
		t.Fatalf("ParseArticle(fenced): %v", err)
	}
	want, _ := ParseArticle(validArticleJSON)
	if got.MetaTitle != want.MetaTitle || got.BodyHTML != want.BodyHTML || got.Slug != want.Slug {
		t.Error("fenced and unfenced responses should parse identically")
	}
}

func TestParseArticle_MissingFieldIsMalformed(t *testing.T) {
	cases := map[string]string{
		"metaTitle":       `{"metaDescription":"d","slug":"s","headline":"h","keywords":["k"],"bodyHtml":"<p>b</p>"}`,
		"metaDescription": `{"metaTitle":"t","slug":"s","headline":"h","keywords":["k"],"bodyHtml":"<p>b</p>"}`,
		"slug":            `{"metaTitle":"t","metaDescription":"d","headline":"h","keywords":["k"],"bodyHtml":"<p>b</p>"}`,
		"headline":        `{"metaTitle":"t","metaDescription":"d","slug":"s","keywords":["k"],"bodyHtml":"<p>b</p>"}`,
		"keywords":        `{"metaTitle":"t","metaDescription":"d","slug":"s","headline":"h","bodyHtml":"<p>b</p>"}`,
		"bodyHtml":        `{"metaTitle":"t","metaDescription":"d","slug":"s","headline":"h","keywords":["k"]}`,
	}

	for field, raw := range cases {
		_, err := ParseArticle(raw)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("missing %s: expected ErrMalformed, got %v", field, err)
			continue
		}
		if !strings.Contains(err.Error(), field) {
			t.Errorf("missing %s: error should name the field, got %v", field, err)
		}
	}
}

func TestParseArticle_BrokenJSON(t *testing.T) {
	_, err := ParseArticle(`{"metaTitle": "unterminated`)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("tr", "the transcript text", "mention the sponsor")

	if !strings.Contains(p, "Turkish") {
		t.Error("prompt should name the target language")
	}
	if !strings.Contains(p, "the transcript text") {
		t.Error("prompt should contain the transcript")
	}
	if !strings.Contains(p, "mention the sponsor") {
		t.Error("prompt should contain the user addendum verbatim")
	}
	if strings.Index(p, "mention the sponsor") > strings.Index(p, "TRANSCRIPT:") {
		t.Error("addendum should precede the transcript")
	}
}

func TestBuildPrompt_NoAddendum(t *testing.T) {
	p := BuildPrompt("en", "words", "")
	if strings.Contains(p, "Additional user notes") {
		t.Error("empty addendum should not be mentioned")
	}
}
