package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatChoice struct {
	Message replyMessage `json:"message"`
	// Some gateways answer with the streaming shape even for stream=false.
	Delta replyMessage `json:"delta"`
	// Completion-style responses.
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

type replyMessage struct {
	Content string `json:"content"`
	Refusal string `json:"refusal"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, snippet(e.Body))
}

// emptyReplyError is returned for a 200 response without any text. Providers
// under load do this, so it is retried.
type emptyReplyError struct {
	FinishReason string
	Refusal      string
	Body         string
}

func (e *emptyReplyError) Error() string {
	return fmt.Sprintf("empty reply (finish_reason=%q, refusal=%q, body=%s)",
		e.FinishReason, e.Refusal, snippet(e.Body))
}

func (c *Client) send(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			RetryAfter: retryAfter,
		}
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	if len(decoded.Choices) == 0 {
		return "", &emptyReplyError{Body: string(raw)}
	}
	return replyText(decoded.Choices, raw)
}

func replyText(choices []chatChoice, raw []byte) (string, error) {
	empty := &emptyReplyError{Body: string(raw)}
	for _, choice := range choices {
		for _, text := range []string{choice.Message.Content, choice.Delta.Content, choice.Text} {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				return trimmed, nil
			}
		}
		if empty.FinishReason == "" {
			empty.FinishReason = strings.TrimSpace(choice.FinishReason)
		}
		if empty.Refusal == "" {
			empty.Refusal = strings.TrimSpace(choice.Message.Refusal)
		}
	}
	return "", empty
}

func snippet(body string) string {
	clean := strings.Join(strings.Fields(body), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
