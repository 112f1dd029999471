package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"subman/internal/config"
	"subman/internal/deps"
	"subman/internal/llm"
	"subman/internal/youtube"
)

const openAIChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckQuizProvider verifies the configured quiz provider. The inference
// endpoint accepts anonymous requests, so it only reports whether a token
// is set; chat-completion providers get a live health check.
func CheckQuizProvider(ctx context.Context, cfg *config.Config) Result {
	name := fmt.Sprintf("Quiz provider (%s)", cfg.Quiz.Provider)
	switch cfg.Quiz.Provider {
	case config.ProviderHuggingFace:
		if cfg.Quiz.Endpoint == "" {
			return Result{Name: name, Detail: "endpoint missing"}
		}
		if cfg.Quiz.APIKey == "" {
			return Result{Name: name, Passed: true, Detail: "anonymous access (rate limits apply)"}
		}
		return Result{Name: name, Passed: true, Detail: "token configured"}
	case config.ProviderOpenRouter:
		return CheckLLM(ctx, name, cfg.QuizLLM())
	case config.ProviderOpenAI:
		conn := cfg.QuizLLM()
		if conn.BaseURL == "" {
			conn.BaseURL = openAIChatCompletionsURL
		} else {
			conn.BaseURL = strings.TrimRight(conn.BaseURL, "/") + "/chat/completions"
		}
		return CheckLLM(ctx, name, conn)
	default:
		return Result{Name: name, Detail: "unknown provider"}
	}
}

// CheckYouTubeAPI verifies the Data API key with a single cheap request.
func CheckYouTubeAPI(ctx context.Context, apiKey string, opts ...option.ClientOption) Result {
	const name = "YouTube Data API"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	api, err := youtube.NewDataAPI(checkCtx, apiKey, opts...)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := api.Ping(checkCtx); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case 400, 401, 403:
				return Result{Name: name, Detail: fmt.Sprintf("auth failed (%d)", apiErr.Code)}
			}
		}
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckYtdlp verifies the yt-dlp binary and reports its version.
func CheckYtdlp(ctx context.Context, cfg *config.Config) Result {
	const name = "yt-dlp"

	statuses := CheckSystemDeps(ctx, cfg)
	if missing := deps.Missing(statuses); len(missing) > 0 {
		return Result{Name: name, Detail: missing[0].Detail}
	}
	for _, status := range statuses {
		if status.Name != name {
			continue
		}
		if status.Version == "" {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", status.Path, status.Detail)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s %s", status.Path, status.Version)}
	}
	return Result{Name: name, Detail: "not checked"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWritableTarget is CheckDirectoryAccess for directories that are
// created on first use. A missing directory passes when its nearest existing
// ancestor is writable.
func CheckWritableTarget(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	check := CheckDirectoryAccess(name, ancestor)
	if !check.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot be created under %s)", path, ancestor)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckSystemDeps evaluates the external programs required by the config.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.YouTube.YtdlpPath,
			Description: "Required for transcripts and playlist resolution",
			VersionArgs: []string{"--version"},
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
