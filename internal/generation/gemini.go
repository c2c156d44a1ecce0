package generation

import (
	"context"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"audioblog-go/internal/config"
	"audioblog-go/internal/logger"
	"audioblog-go/internal/types"
)

// Gemini generates articles through the Gemini API with a typed response
// schema, so the model is constrained to the article shape instead of merely
// asked for it.
type Gemini struct {
	apiKey   string
	model    string
	language string
	log      *logger.Logger

	mu     sync.Mutex
	client *genai.Client
}

func NewGemini(apiKey, model, language string, log *logger.Logger) *Gemini {
	return &Gemini{apiKey: apiKey, model: model, language: language, log: log}
}

func (g *Gemini) Generate(ctx context.Context, transcript, extraPrompt string) (*types.Article, error) {
	if g.apiKey == "" {
		return nil, &config.MissingCredentialError{Which: "GEMINI_API_KEY"}
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Message: err.Error()}
	}

	model := client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = articleSchema()

	log := g.log.WithField("module", "generation")
	log.WithFields(map[string]interface{}{
		"model":          g.model,
		"transcript_len": len(transcript),
	}).Info("generating article")

	prompt := BuildPrompt(g.language, transcript, extraPrompt)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		// keep the provider message verbatim: "quota exceeded" and "bad
		// credentials" must stay distinguishable downstream
		return nil, &ProviderError{Provider: "gemini", Message: err.Error()}
	}

	text := responseText(resp)
	if text == "" {
		return nil, &ProviderError{Provider: "gemini", Message: "no candidates in response"}
	}

	article, err := ParseArticle(text)
	if err != nil {
		return nil, err
	}

	log.WithField("slug", article.Slug).Info("article generated")
	return article, nil
}

func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, err
	}
	g.client = client
	return client, nil
}

func articleSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"metaTitle":       {Type: genai.TypeString},
			"metaDescription": {Type: genai.TypeString},
			"slug":            {Type: genai.TypeString},
			"headline":        {Type: genai.TypeString},
			"keywords":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"bodyHtml":        {Type: genai.TypeString},
		},
		Required: []string{"metaTitle", "metaDescription", "slug", "headline", "keywords", "bodyHtml"},
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
