package generation

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are a professional content editor, blog writer and SEO specialist.
Using the transcript below, write a keyword-focused, SEO-friendly, fluent and readable professional blog post, entirely in %s.

Return JSON only. Do not add any other text, markdown backticks included.

JSON schema:
{
  "metaTitle": "SEO meta title, click-oriented (max 60 characters)",
  "metaDescription": "compelling meta description (140-160 characters)",
  "slug": "url-friendly-slug",
  "headline": "main headline of the post",
  "keywords": ["list", "of", "keywords"],
  "bodyHtml": "<p>Introduction...</p>..."
}

Rules for bodyHtml:
1. Only semantic HTML tags (h2, h3, p, ul, li, strong, blockquote). No h1 (that lives in the headline field).
2. Never emit <html>, <head> or <body> tags. Body content only.
3. Tone: not academic; fluent, clear, professional. No needless repetition. Stay on topic.
4. Structure:
   - an effective 2-3 sentence introduction paragraph
   - body split by h2 and h3 subheadings
   - bullet lists where they improve readability
   - a conclusion / summary section
5. Stay faithful to the transcript but clean up spoken-language fillers.
6. No inline CSS or styling.`

// BuildPrompt composes the fixed instruction template, the optional user
// addendum (appended verbatim) and the transcript.
func BuildPrompt(language, transcript, extraPrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptTemplate, languageName(language))
	if extraPrompt != "" {
		b.WriteString("\n\nAdditional user notes: ")
		b.WriteString(extraPrompt)
	}
	b.WriteString("\n\nTRANSCRIPT:\n")
	b.WriteString(transcript)
	return b.String()
}

func languageName(code string) string {
	switch strings.ToLower(code) {
	case "tr":
		return "Turkish"
	case "en", "":
		return "English"
	case "de":
		return "German"
	case "fr":
		return "French"
	case "es":
		return "Spanish"
	default:
		return code
	}
}
