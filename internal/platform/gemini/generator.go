// Package gemini implements generation.Generator using Google's Gemini API.
// Gemini does not speak the chat-completions wire format, so it gets its own
// transport; the prompt and parsing contracts still come from the generation
// package, keeping the variant interchangeable with the others.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkowalczyk/cardgen-api/internal/generation"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"google.golang.org/genai"
)

// Generator implements generation.Generator against the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// Ensure Generator implements the generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed Generator.
func NewGenerator(ctx context.Context, apiKey, model string, log *slog.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Generator{
		client: client,
		model:  model,
		logger: log.With(slog.String("component", "gemini_generator")),
	}, nil
}

// GenerateProposals implements generation.Generator.
func (g *Generator) GenerateProposals(ctx context.Context, sourceText string) (*generation.Output, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	log.Debug("calling Gemini API",
		slog.String("model", g.model),
		slog.Int("source_text_length", len(sourceText)))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(generation.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](generation.Temperature),
		MaxOutputTokens:   generation.MaxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(generation.UserPrompt(sourceText)), cfg)
	if err != nil {
		log.Error("Gemini API call failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", generation.ErrProviderFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: response contained no candidates", generation.ErrProviderFailure)
	}

	proposals := generation.ParseProposals(resp.Text())

	log.Info("Gemini call completed",
		slog.String("model", g.model),
		slog.Int("proposal_count", len(proposals)))

	return &generation.Output{
		Proposals: proposals,
		Model:     g.model,
	}, nil
}
