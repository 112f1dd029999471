package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"subman/internal/config"
	"subman/internal/logging"
)

type inferenceParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	DoSample    bool    `json:"do_sample"`
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

// HuggingFace posts prompts to a text-generation inference endpoint.
type HuggingFace struct {
	endpoint string
	apiKey   string
	params   inferenceParameters
	client   *http.Client
	wait     time.Duration
	sleeper  Sleeper
	out      io.Writer
	logger   *slog.Logger
}

func newHuggingFace(cfg *config.Config, timeout time.Duration, s providerSettings) *HuggingFace {
	client := s.httpClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HuggingFace{
		endpoint: cfg.Quiz.Endpoint,
		apiKey:   cfg.Quiz.APIKey,
		params: inferenceParameters{
			MaxLength:   cfg.Quiz.MaxLength,
			Temperature: cfg.Quiz.Temperature,
			TopP:        cfg.Quiz.TopP,
			DoSample:    true,
		},
		client:  client,
		wait:    cfg.RateLimitWait(),
		sleeper: s.sleeper,
		out:     s.out,
		logger:  logging.NewComponentLogger(s.logger, "quiz.huggingface"),
	}
}

// Name implements Provider.
func (h *HuggingFace) Name() string { return config.ProviderHuggingFace }

// Generate sends prompt once, and once more after a wait if the endpoint
// answers 429. A second 429 is returned as a StatusError.
func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: prompt, Parameters: h.params})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	text, err := h.post(ctx, body)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusTooManyRequests {
		return text, err
	}

	fmt.Fprintf(h.out, "API rate limited. Waiting %d seconds before retrying...\n", int(h.wait/time.Second))
	logging.WarnWithContext(h.logger, "inference endpoint rate limited",
		"quiz_rate_limited",
		logging.Duration("wait", h.wait),
		logging.String("endpoint", h.endpoint),
	)
	if err := h.sleeper(ctx, h.wait); err != nil {
		return "", err
	}
	return h.post(ctx, body)
}

func (h *HuggingFace) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	started := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	h.logger.Debug("inference response",
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", &StatusError{Code: resp.StatusCode}
	}

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	items, ok := decoded.([]any)
	if !ok || len(items) == 0 {
		return "", ErrUnexpectedResponse
	}
	first, ok := items[0].(map[string]any)
	if !ok {
		return "", ErrUnexpectedResponse
	}
	text, _ := first["generated_text"].(string)
	return text, nil
}
