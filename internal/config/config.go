package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the working directories.
type Paths struct {
	SubtitlesDir   string `toml:"subtitles_dir"`
	ManuscriptsDir string `toml:"manuscripts_dir"`
	QuizzesDir     string `toml:"quizzes_dir"`
	StateDir       string `toml:"state_dir"`
	LogDir         string `toml:"log_dir"`
}

// YouTube contains settings for playlist resolution, title lookup, and
// transcript retrieval.
type YouTube struct {
	YtdlpPath             string   `toml:"ytdlp_path"`
	YtdlpTimeout          int      `toml:"ytdlp_timeout"`
	APIKey                string   `toml:"api_key"`
	Languages             []string `toml:"languages"`
	RequestDelayMillis    int      `toml:"request_delay_ms"`
	TitleRetries          int      `toml:"title_retries"`
	TitleRetryDelayMillis int      `toml:"title_retry_delay_ms"`
	ScrapeTitles          bool     `toml:"scrape_titles"`
}

// Quiz contains settings for the quiz generation provider.
type Quiz struct {
	Provider             string  `toml:"provider"`
	Endpoint             string  `toml:"endpoint"`
	Model                string  `toml:"model"`
	APIKey               string  `toml:"api_key"`
	Referer              string  `toml:"referer"`
	Title                string  `toml:"title"`
	TimeoutSeconds       int     `toml:"timeout_seconds"`
	MaxContentChars      int     `toml:"max_content_chars"`
	MaxLength            int     `toml:"max_length"`
	Temperature          float64 `toml:"temperature"`
	TopP                 float64 `toml:"top_p"`
	RateLimitWaitSeconds int     `toml:"rate_limit_wait_seconds"`
	MaxQuestions         int     `toml:"max_questions"`
}

// Catalog controls the SQLite history of downloads and generated files.
type Catalog struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format  string `toml:"format"`
	Level   string `toml:"level"`
	Console bool   `toml:"console"`
}

// Config encapsulates all configuration values for subman.
//
// Configuration sections by subsystem:
//   - Paths: subtitle, manuscript, quiz, state, and log directories
//   - YouTube: yt-dlp, Data API key, caption languages, throttling
//   - Quiz: generation provider, endpoint, sampling parameters
//   - Catalog: SQLite history toggle
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	YouTube YouTube `toml:"youtube"`
	Quiz    Quiz    `toml:"quiz"`
	Catalog Catalog `toml:"catalog"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subman.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. The subtitle,
// manuscript, and quiz directories are created lazily by the operation that
// first writes into them so that an empty workspace stays empty.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogPath returns the SQLite catalog location.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.StateDir, "catalog.db")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "subman.log")
}

// YtdlpTimeoutDuration returns the per-invocation yt-dlp timeout.
func (c *Config) YtdlpTimeoutDuration() time.Duration {
	return time.Duration(c.YouTube.YtdlpTimeout) * time.Second
}

// RequestDelay returns the pause enforced between per-video requests.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.YouTube.RequestDelayMillis) * time.Millisecond
}

// TitleRetryDelay returns the pause between title lookup attempts.
func (c *Config) TitleRetryDelay() time.Duration {
	return time.Duration(c.YouTube.TitleRetryDelayMillis) * time.Millisecond
}

// RateLimitWait returns how long the quiz generator waits after HTTP 429.
func (c *Config) RateLimitWait() time.Duration {
	return time.Duration(c.Quiz.RateLimitWaitSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML. API keys are masked.
func (c *Config) Encode() ([]byte, error) {
	masked := *c
	masked.YouTube.APIKey = maskSecret(masked.YouTube.APIKey)
	masked.Quiz.APIKey = maskSecret(masked.Quiz.APIKey)
	data, err := toml.Marshal(masked)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:2] + strings.Repeat("*", len(value)-4) + value[len(value)-2:]
}

// LLMConfig contains the chat-completion settings used by the openrouter and
// openai quiz providers.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// QuizLLM returns the chat-completion connection settings.
func (c *Config) QuizLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.Quiz.APIKey),
		BaseURL:        strings.TrimSpace(c.Quiz.Endpoint),
		Model:          strings.TrimSpace(c.Quiz.Model),
		Referer:        strings.TrimSpace(c.Quiz.Referer),
		Title:          strings.TrimSpace(c.Quiz.Title),
		TimeoutSeconds: c.Quiz.TimeoutSeconds,
	}
}
