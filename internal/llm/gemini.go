package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/rowanhart/curator/internal/apperr"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// callTimeout bounds every generation call. The upstream API has no
// deadline of its own; an unbounded call would stall the whole message
// handler.
const callTimeout = 60 * time.Second

// Gemini implements Model on the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed model client.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends the prompt parts as a single user turn and returns the
// generated text with the total token count.
func (g *Gemini) Generate(ctx context.Context, parts []Part) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	converted := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsBlob() {
			converted = append(converted, genai.NewPartFromBytes(p.Data, p.MIME))
			continue
		}
		converted = append(converted, genai.NewPartFromText(p.Text))
	}
	contents := []*genai.Content{genai.NewContentFromParts(converted, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("llm: generate: %w: %w", apperr.ErrModelUnavailable, err)
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return &Reply{Text: resp.Text(), Tokens: tokens}, nil
}
