package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ReadinessBot/internal/scoring"

	"github.com/revrost/go-openrouter"
)

// OpenRouterGenerator asks an OpenRouter chat model for the report.
type OpenRouterGenerator struct {
	client  *openrouter.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) openrouter.Option {
	return func(c *openrouter.ClientConfig) { c.BaseURL = url }
}

func NewOpenRouterGenerator(logger *slog.Logger, apiKey, model string, timeout time.Duration, opts ...openrouter.Option) *OpenRouterGenerator {
	opts = append([]openrouter.Option{openrouter.WithXTitle("ReadinessBot")}, opts...)
	return &OpenRouterGenerator{
		client:  openrouter.NewClient(apiKey, opts...),
		model:   model,
		timeout: timeout,
		log:     logger.With(slog.String("component", "narrative")),
	}
}

func (g *OpenRouterGenerator) Generate(ctx context.Context, s scoring.Summary) (string, error) {
	op := "OpenRouterGenerator.Generate"
	log := g.log.With(slog.String("op", op))

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model: g.model,
		Messages: []openrouter.ChatCompletionMessage{
			openrouter.SystemMessage(systemPrompt),
			openrouter.UserMessage(Prompt(s)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content.Text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	log.Debug("narrative generated",
		slog.String("model", g.model),
		slog.Duration("elapsed", time.Since(started)),
		slog.Int("chars", len(text)))

	return text, nil
}
