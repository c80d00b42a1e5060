package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

const systemPrompt = `You generate project graphs from a natural language description.
Return ONLY valid JSON in this exact format:
{
  "nodes": [
    {"id": "unique_id", "label": "Node Label", "type": "TASK|SERVICE|COMPONENT|DATABASE|API_ENDPOINT|MILESTONE|IDEA|NOTE",
     "status": "IDLE|PLANNED|IN_PROGRESS|BLOCKED|OVERDUE", "priority": 1, "tags": ["tag"]}
  ],
  "edges": [
    {"source": "node_id", "target": "node_id", "type": "dependency|parent|reference"}
  ]
}
Use lowercase ids with underscores. Priority goes from 1 (low) to 4 (critical).
Every edge must connect two listed nodes.`

// GeminiModel calls the Gemini API through genai.
type GeminiModel struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// GeminiOption adjusts the client configuration.
type GeminiOption func(*genai.ClientConfig)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(url string) GeminiOption {
	return func(cc *genai.ClientConfig) {
		cc.HTTPOptions.BaseURL = url
	}
}

func NewGeminiModel(ctx context.Context, logger *slog.Logger, apiKey, model string, opts ...GeminiOption) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if model == "" {
		model = DefaultModel
	}

	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	for _, opt := range opts {
		opt(config)
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiModel{client: client, model: model, logger: logger.With("module", "gemini")}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}

	if resp.UsageMetadata != nil {
		m.logger.DebugContext(ctx, "Gemini generation complete",
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount,
		)
	}

	return text, nil
}
