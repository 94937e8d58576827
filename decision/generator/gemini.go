package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// =============================================================================
// GOOGLE GENAI GENERATOR
// =============================================================================

// contentModels is the part of genai.Models the generator uses.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates analyses with Google's Gemini API.
type Gemini struct {
	models      contentModels
	temperature float32
	logger      zerolog.Logger
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey string, temperature float32, logger zerolog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required (set GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGemini(client.Models, temperature, logger), nil
}

func newGemini(models contentModels, temperature float32, logger zerolog.Logger) *Gemini {
	return &Gemini{
		models:      models,
		temperature: temperature,
		logger:      logger.With().Str("component", "generator").Logger(),
	}
}

// Generate asks the model for a JSON reply to req.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(g.temperature),
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, model, genai.Text(req.Content), config)
	if err != nil {
		g.logger.Debug().Err(err).Str("model", model).Dur("elapsed", time.Since(start)).Msg("Generation failed")
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	text := resp.Text()
	g.logger.Debug().
		Str("model", model).
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("Generation complete")
	return text, nil
}
