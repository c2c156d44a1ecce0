package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"audioblog-go/internal/types"
)

func postWithKeywords(id string, keywords ...string) *types.Post {
	return &types.Post{
		ID:        id,
		Title:     "Post " + id,
		CreatedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Article: &types.Article{
			Slug:     "post-" + id,
			Keywords: keywords,
			BodyHTML: "<p>body</p>",
		},
	}
}

func TestPrintableHTML(t *testing.T) {
	post := &types.Post{
		ID:    "p1",
		Title: "Tips & Tricks <2025>",
		Article: &types.Article{
			MetaDescription: "A \"useful\" summary",
			BodyHTML:        "<h2>Section</h2><p>content</p>",
		},
	}

	doc, err := PrintableHTML(post)
	if err != nil {
		t.Fatalf("PrintableHTML: %v", err)
	}
	if !strings.Contains(doc, "<h1>Tips &amp; Tricks &lt;2025&gt;</h1>") {
		t.Errorf("title not escaped:\n%s", doc)
	}
	if !strings.Contains(doc, "A &#34;useful&#34; summary") {
		t.Errorf("description not escaped:\n%s", doc)
	}
	if !strings.Contains(doc, "<h2>Section</h2><p>content</p>") {
		t.Errorf("article body not passed through verbatim:\n%s", doc)
	}
	if !strings.Contains(doc, "<!DOCTYPE html>") {
		t.Errorf("not a standalone document:\n%s", doc)
	}
}

func TestPrintableHTML_FallsBackToHeadline(t *testing.T) {
	post := &types.Post{
		ID:      "p1",
		Article: &types.Article{Headline: "From Headline", BodyHTML: "<p>x</p>"},
	}
	doc, err := PrintableHTML(post)
	if err != nil {
		t.Fatalf("PrintableHTML: %v", err)
	}
	if !strings.Contains(doc, "<h1>From Headline</h1>") {
		t.Errorf("headline fallback missing:\n%s", doc)
	}
}

func TestPrintableHTML_NoArticle(t *testing.T) {
	if _, err := PrintableHTML(&types.Post{ID: "p1", Transcript: "only text"}); err == nil {
		t.Fatal("expected error for post without article")
	}
}

func TestAggregateKeywords(t *testing.T) {
	posts := []*types.Post{
		postWithKeywords("a", "SEO", "audio", "  "),
		postWithKeywords("b", "seo", "podcast"),
		{ID: "c", Transcript: "no article"},
	}

	got := AggregateKeywords(posts)
	want := []KeywordCount{
		{Keyword: "seo", Count: 2},
		{Keyword: "audio", Count: 1},
		{Keyword: "podcast", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWriteReport(t *testing.T) {
	posts := []*types.Post{
		postWithKeywords("p1", "seo"),
		postWithKeywords("p2", "seo", "audio"),
	}
	posts[0].Transcript = "hello"

	var buf bytes.Buffer
	if err := WriteReport(posts, &buf); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	id, err := f.GetCellValue("Posts", "A2")
	if err != nil || id != "p1" {
		t.Errorf("Posts!A2 = %q, %v", id, err)
	}
	chars, _ := f.GetCellValue("Posts", "G2")
	if chars != "5" {
		t.Errorf("Posts!G2 = %q, want transcript length 5", chars)
	}
	kw, _ := f.GetCellValue("Keywords", "A2")
	count, _ := f.GetCellValue("Keywords", "B2")
	if kw != "seo" || count != "2" {
		t.Errorf("Keywords row = %q/%q, want seo/2", kw, count)
	}
}
