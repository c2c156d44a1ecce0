package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"audioblog-go/internal/types"
)

// KeywordCount is one row of the keyword frequency summary.
type KeywordCount struct {
	Keyword string
	Count   int
}

// AggregateKeywords counts keyword occurrences across all posts,
// case-insensitively, most frequent first.
func AggregateKeywords(posts []*types.Post) []KeywordCount {
	counts := map[string]int{}
	for _, p := range posts {
		if p.Article == nil {
			continue
		}
		for _, kw := range p.Article.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			counts[kw]++
		}
	}

	out := make([]KeywordCount, 0, len(counts))
	for kw, n := range counts {
		out = append(out, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

// WriteReport writes an XLSX workbook with a Posts sheet (one row per post)
// and a Keywords sheet (frequency summary) to w.
func WriteReport(posts []*types.Post, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const postsSheet = "Posts"
	f.SetSheetName("Sheet1", postsSheet)

	headers := []string{"ID", "Title", "Slug", "Created", "Source URL", "Keywords", "Transcript Chars"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(postsSheet, cell, h)
	}

	for row, p := range posts {
		slug, keywords := "", ""
		if p.Article != nil {
			slug = p.Article.Slug
			keywords = strings.Join(p.Article.Keywords, ", ")
		}
		values := []interface{}{
			p.ID, p.Title, slug,
			p.CreatedAt.Format(time.RFC3339),
			p.SourceURL, keywords, len(p.Transcript),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(postsSheet, cell, v)
		}
	}

	const kwSheet = "Keywords"
	if _, err := f.NewSheet(kwSheet); err != nil {
		return fmt.Errorf("create keywords sheet: %w", err)
	}
	f.SetCellValue(kwSheet, "A1", "Keyword")
	f.SetCellValue(kwSheet, "B1", "Posts")
	for i, kc := range AggregateKeywords(posts) {
		f.SetCellValue(kwSheet, fmt.Sprintf("A%d", i+2), kc.Keyword)
		f.SetCellValue(kwSheet, fmt.Sprintf("B%d", i+2), kc.Count)
	}

	return f.Write(w)
}
