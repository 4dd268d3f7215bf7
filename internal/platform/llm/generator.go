package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkowalczyk/cardgen-api/internal/generation"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
)

// Endpoints of the supported chat-completions vendors.
const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
)

// Generator implements generation.Generator for one configured
// chat-completions vendor. The prompt and parsing contracts come from the
// generation package so that every vendor remains interchangeable.
type Generator struct {
	client *Client
	model  string
	name   string
	logger *slog.Logger
}

// Ensure Generator implements the generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// NewOpenAIGenerator creates a Generator backed by the OpenAI API.
func NewOpenAIGenerator(apiKey, model string, timeout time.Duration, log *slog.Logger) (*Generator, error) {
	return newGenerator("openai", openAIEndpoint, apiKey, model, timeout, nil, log)
}

// NewOpenRouterGenerator creates a Generator backed by OpenRouter. The
// attribution headers are the ones OpenRouter uses for app rankings.
func NewOpenRouterGenerator(apiKey, model string, timeout time.Duration, log *slog.Logger) (*Generator, error) {
	headers := map[string]string{
		"HTTP-Referer": "https://github.com/mkowalczyk/cardgen-api",
		"X-Title":      "cardgen-api",
	}
	return newGenerator("openrouter", openRouterEndpoint, apiKey, model, timeout, headers, log)
}

func newGenerator(
	name, endpoint, apiKey, model string,
	timeout time.Duration,
	headers map[string]string,
	log *slog.Logger,
) (*Generator, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := NewClient(endpoint, apiKey, timeout, headers)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}

	return &Generator{
		client: client,
		model:  model,
		name:   name,
		logger: log.With(slog.String("component", name+"_generator")),
	}, nil
}

// GenerateProposals implements generation.Generator. It sends the shared
// prompts with the verbatim source text, then hands the first message's
// content to the shared parser. Zero extractable proposals is a valid
// outcome, not an error.
func (g *Generator) GenerateProposals(ctx context.Context, sourceText string) (*generation.Output, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	log.Debug("calling chat-completions provider",
		slog.String("provider", g.name),
		slog.String("model", g.model),
		slog.Int("source_text_length", len(sourceText)))

	content, err := g.client.Complete(ctx, g.model, generation.SystemPrompt, generation.UserPrompt(sourceText))
	if err != nil {
		log.Error("provider call failed",
			slog.String("provider", g.name),
			slog.String("error", err.Error()))
		return nil, err
	}

	proposals := generation.ParseProposals(content)

	log.Info("provider call completed",
		slog.String("provider", g.name),
		slog.String("model", g.model),
		slog.Int("proposal_count", len(proposals)))

	return &generation.Output{
		Proposals: proposals,
		Model:     g.model,
	}, nil
}
