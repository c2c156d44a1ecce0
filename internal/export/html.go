// Package export renders stored posts into shareable artifacts: a printable
// HTML document per post and an XLSX report across all posts. Pagination and
// binary document formats are left to the consumer.
package export

import (
	"fmt"
	"html"
	"strings"

	"audioblog-go/internal/types"
)

const printableStyle = `
body { font-family: 'Georgia', serif; max-width: 800px; margin: 40px auto; padding: 20px; line-height: 1.8; color: #333; }
h1 { color: #1a1a1a; border-bottom: 2px solid #eee; padding-bottom: 10px; }
h2, h3 { color: #2a2a2a; margin-top: 30px; }
p { margin: 16px 0; }
ul, ol { margin: 16px 0; padding-left: 30px; }
li { margin: 8px 0; }
blockquote { border-left: 4px solid #ddd; padding-left: 20px; margin: 20px 0; color: #666; font-style: italic; }
.meta { color: #888; font-style: italic; margin-bottom: 30px; }
@media print { body { margin: 0; padding: 20px; } }`

// PrintableHTML wraps a post's article body in a standalone printable
// document. The body markup comes straight from the generation stage and is
// trusted; title and description are escaped.
func PrintableHTML(post *types.Post) (string, error) {
	if post.Article == nil || post.Article.BodyHTML == "" {
		return "", fmt.Errorf("post %s has no article body", post.ID)
	}

	title := post.Title
	if title == "" {
		title = post.Article.Headline
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<style>%s</style>\n</head>\n<body>\n", printableStyle)
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	if post.Article.MetaDescription != "" {
		fmt.Fprintf(&b, "<p class=\"meta\">%s</p>\n", html.EscapeString(post.Article.MetaDescription))
	}
	b.WriteString(post.Article.BodyHTML)
	b.WriteString("\n</body>\n</html>\n")
	return b.String(), nil
}
