package quiz

import (
	"context"
	"log/slog"

	"subman/internal/config"
	"subman/internal/llm"
	"subman/internal/logging"
)

// OpenRouter sends prompts through the chat-completions client.
type OpenRouter struct {
	client   *llm.Client
	sampling llm.Sampling
	logger   *slog.Logger
}

func newOpenRouter(cfg *config.Config, s providerSettings) *OpenRouter {
	conn := cfg.QuizLLM()
	opts := []llm.Option{llm.WithSleeper(s.sleeper)}
	if s.httpClient != nil {
		opts = append(opts, llm.WithHTTPClient(s.httpClient))
	}
	return &OpenRouter{
		client: llm.NewClient(llm.Config{
			APIKey:         conn.APIKey,
			BaseURL:        conn.BaseURL,
			Model:          conn.Model,
			Referer:        conn.Referer,
			Title:          conn.Title,
			TimeoutSeconds: conn.TimeoutSeconds,
		}, opts...),
		sampling: llm.Sampling{
			Temperature: cfg.Quiz.Temperature,
			TopP:        cfg.Quiz.TopP,
			MaxTokens:   cfg.Quiz.MaxLength,
		},
		logger: logging.NewComponentLogger(s.logger, "quiz.openrouter"),
	}
}

// Name implements Provider.
func (o *OpenRouter) Name() string { return config.ProviderOpenRouter }

// Generate implements Provider.
func (o *OpenRouter) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := o.client.Complete(ctx, "", prompt, o.sampling)
	if err != nil {
		if code, ok := llm.HTTPStatus(err); ok {
			o.logger.Debug("chat completion rejected", logging.Int("status", code), logging.Error(err))
			return "", &StatusError{Code: code}
		}
		return "", err
	}
	return text, nil
}
