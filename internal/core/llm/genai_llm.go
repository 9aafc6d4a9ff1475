package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/markdave123-py/quizsmith/internal/core"
)

// GenAIOptions selects the backend for GenAILLM. Vertex AI is used when
// Project is set, otherwise the Gemini API with APIKey.
type GenAIOptions struct {
	APIKey   string
	Project  string
	Location string
	Model    string
}

// GenAILLM calls Gemini through the unified google.golang.org/genai SDK.
type GenAILLM struct {
	client     *genai.Client
	model      string
	jsonOutput bool
}

var _ core.LLMProvider = (*GenAILLM)(nil)

func NewGenAILLM(ctx context.Context, opts GenAIOptions) (*GenAILLM, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI, APIKey: opts.APIKey}
	if opts.Project != "" {
		cfg = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  opts.Project,
			Location: opts.Location,
		}
	} else if opts.APIKey == "" {
		return nil, fmt.Errorf("genai: missing API key")
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &GenAILLM{client: client, model: model}, nil
}

// WithJSONOutput returns a provider sharing the client that requests JSON output.
func (g *GenAILLM) WithJSONOutput() *GenAILLM {
	cp := *g
	cp.jsonOutput = true
	return &cp
}

// Close is a no-op; the genai client holds no closable resources.
func (g *GenAILLM) Close() error { return nil }

func (g *GenAILLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if g.jsonOutput {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", classify("genai generate", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("genai generate: %w: no candidates", core.ErrProvider)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
