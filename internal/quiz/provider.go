package quiz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"subman/internal/config"
	"subman/internal/llm"
	"subman/internal/logging"
)

// ErrUnexpectedResponse reports a 200 response whose body was not a
// non-empty array.
var ErrUnexpectedResponse = errors.New("api response format unexpected")

// StatusError carries a non-success HTTP status from a provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api request failed with status code: %d", e.Code)
}

// Provider produces test text for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Text renders a provider outcome as the content to save. Failures become
// the user-facing message so the saved file explains what went wrong.
func Text(result string, err error) string {
	if err == nil {
		return result
	}
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("API request failed with status code: %d", statusErr.Code)
	case errors.Is(err, ErrUnexpectedResponse):
		return "Failed to generate test. API response format unexpected."
	default:
		return fmt.Sprintf("Error generating test: %v", err)
	}
}

// Sleeper waits for d or until ctx is done.
type Sleeper = llm.Sleeper

// ProviderOption customizes provider construction.
type ProviderOption func(*providerSettings)

type providerSettings struct {
	httpClient *http.Client
	out        io.Writer
	logger     *slog.Logger
	sleeper    Sleeper
}

// WithHTTPClient overrides the HTTP client used by providers.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(s *providerSettings) { s.httpClient = client }
}

// WithNotices sets where user-facing notices such as rate limit waits go.
func WithNotices(w io.Writer) ProviderOption {
	return func(s *providerSettings) { s.out = w }
}

// WithProviderLogger sets the structured logger.
func WithProviderLogger(logger *slog.Logger) ProviderOption {
	return func(s *providerSettings) { s.logger = logger }
}

// WithRateLimitSleeper replaces the waits performed between retries.
func WithRateLimitSleeper(sleeper Sleeper) ProviderOption {
	return func(s *providerSettings) { s.sleeper = sleeper }
}

// NewProvider builds the provider named by cfg.Quiz.Provider.
func NewProvider(cfg *config.Config, opts ...ProviderOption) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("quiz provider requires configuration")
	}
	settings := providerSettings{
		out:     io.Discard,
		sleeper: llm.SleepContext,
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.logger == nil {
		settings.logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Quiz.TimeoutSeconds) * time.Second

	switch cfg.Quiz.Provider {
	case config.ProviderHuggingFace, "":
		return newHuggingFace(cfg, timeout, settings), nil
	case config.ProviderOpenRouter:
		return newOpenRouter(cfg, settings), nil
	case config.ProviderOpenAI:
		return newOpenAI(cfg, timeout, settings), nil
	default:
		return nil, fmt.Errorf("unknown quiz provider %q", cfg.Quiz.Provider)
	}
}
