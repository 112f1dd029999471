package quiz

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"subman/internal/config"
	"subman/internal/logging"
)

// OpenAI sends prompts through the official OpenAI SDK.
type OpenAI struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
	topP        float64
	logger      *slog.Logger
}

func newOpenAI(cfg *config.Config, timeout time.Duration, s providerSettings) *OpenAI {
	conn := cfg.QuizLLM()
	opts := []option.RequestOption{
		option.WithAPIKey(conn.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(2),
	}
	if conn.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(conn.BaseURL))
	}
	if s.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(s.httpClient))
	}
	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       conn.Model,
		maxTokens:   cfg.Quiz.MaxLength,
		temperature: cfg.Quiz.Temperature,
		topP:        cfg.Quiz.TopP,
		logger:      logging.NewComponentLogger(s.logger, "quiz.openai"),
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return config.ProviderOpenAI }

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: openai.ChatModel(o.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			MaxCompletionTokens: param.NewOpt[int64](int64(o.maxTokens)),
			Temperature:         param.NewOpt[float64](o.temperature),
			TopP:                param.NewOpt[float64](o.topP),
		},
	)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			o.logger.Debug("chat completion rejected", logging.Int("status", apiErr.StatusCode))
			return "", &StatusError{Code: apiErr.StatusCode}
		}
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrUnexpectedResponse
	}
	return completion.Choices[0].Message.Content, nil
}
