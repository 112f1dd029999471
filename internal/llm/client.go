package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

const (
	defaultHTTPTimeout = 60 * time.Second
	defaultAttempts    = 3
	defaultBaseDelay   = time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds the endpoint and credentials of one chat-completions service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Referer and Title are sent as OpenRouter attribution headers when set.
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      retryPolicy
	sleep      Sleeper
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts sets the total number of attempts per call. Values
// below one mean a single attempt.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.attempts = attempts }
}

// WithRetryBackoff sets the first retry delay and the cap for later ones.
func WithRetryBackoff(base, ceiling time.Duration) Option {
	return func(c *Client) {
		c.retry.base = base
		c.retry.max = ceiling
	}
}

// WithSleeper replaces the retry wait (tests pass a recorder).
func WithSleeper(sleeper Sleeper) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleep = sleeper
		}
	}
}

// NewClient constructs a client. An empty BaseURL selects OpenRouter.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		retry: retryPolicy{
			attempts: defaultAttempts,
			base:     defaultBaseDelay,
			max:      defaultMaxDelay,
		},
		sleep: SleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sampling carries generation parameters. Zero TopP and MaxTokens are left
// out of the request so provider defaults apply.
type Sampling struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Complete sends one user prompt (and an optional system prompt) and returns
// the reply text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, sampling Sampling) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete: api key required")
	}
	req := chatRequest{
		Model:       c.cfg.Model,
		Temperature: sampling.Temperature,
		TopP:        sampling.TopP,
		MaxTokens:   sampling.MaxTokens,
	}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: userPrompt})
	return c.do(ctx, "llm complete", req)
}

// HealthCheck sends a tiny prompt and succeeds when any text comes back.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	reply, err := c.do(ctx, "llm health", chatRequest{
		Model:     c.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: "Reply with the single word OK."}},
		MaxTokens: 5,
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(reply) == "" {
		return errors.New("llm health: empty reply")
	}
	return nil
}

// HTTPStatus reports the HTTP status code carried by a client error.
func HTTPStatus(err error) (int, bool) {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}

func (c *Client) do(ctx context.Context, op string, req chatRequest) (string, error) {
	attempts := c.retry.maxAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		reply, err := c.send(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		delay, ok := c.retry.next(ctx, err, attempt)
		if !ok {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}
