package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
	"github.com/PabloGalante/tripwise-agent/internal/observability"
)

const DefaultModelName = "gemini-2.5-flash"

// VertexConfig selects the Vertex AI project and model.
type VertexConfig struct {
	Project   string
	Location  string
	ModelName string
}

type VertexClient struct {
	client    *genai.Client
	modelName string
}

// NewVertexClient creates a TextOracle based on Vertex AI (Gemini).
func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	if cfg.Project == "" || cfg.Location == "" {
		return nil, fmt.Errorf("vertex: project and location must be set")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.Project,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: cfg.ModelName,
	}, nil
}

// ExtractIntent implements domain.TextOracle using Vertex AI.
func (v *VertexClient) ExtractIntent(ctx context.Context, message string, current domain.TripIntent) (domain.TripIntent, error) {
	text, err := v.generate(ctx, BuildExtractionPrompt(message, current), true)
	if err != nil {
		return domain.TripIntent{}, &domain.OracleError{Op: "extract_intent", Err: err}
	}

	intent, err := ParseIntent(text)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("unparsable extraction output", "model", v.modelName, "output", text)
		return domain.TripIntent{}, &domain.OracleError{Op: "extract_intent", Err: err}
	}
	return intent, nil
}

func (v *VertexClient) NextQuestion(ctx context.Context, intent domain.TripIntent, field domain.Field) (string, error) {
	text, err := v.generate(ctx, BuildQuestionPrompt(intent, field), false)
	if err != nil {
		return "", &domain.OracleError{Op: "next_question", Err: err}
	}
	return cleanText(text), nil
}

func (v *VertexClient) Summarize(ctx context.Context, plan *domain.Plan) (string, error) {
	text, err := v.generate(ctx, BuildSummaryPrompt(plan), false)
	if err != nil {
		return "", &domain.OracleError{Op: "summarize", Err: err}
	}
	return cleanText(text), nil
}

func (v *VertexClient) generate(ctx context.Context, p Prompt, asJSON bool) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(p.User, genai.RoleUser)}

	// Model config (without genai.Ptr to avoid generic issues)
	temp := float32(0.7)
	if asJSON {
		temp = 0.1
	}
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   2048,
	}
	if asJSON {
		cfg.ResponseMIMEType = "application/json"
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}
	return text, nil
}
