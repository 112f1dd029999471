package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeQuiz()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.subtitles_dir", &c.Paths.SubtitlesDir, defaultSubtitlesDir},
		{"paths.manuscripts_dir", &c.Paths.ManuscriptsDir, defaultManuscriptsDir},
		{"paths.quizzes_dir", &c.Paths.QuizzesDir, defaultQuizzesDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.YtdlpPath = strings.TrimSpace(c.YouTube.YtdlpPath)
	if c.YouTube.YtdlpPath == "" {
		c.YouTube.YtdlpPath = defaultYtdlpPath
	}
	if c.YouTube.YtdlpTimeout <= 0 {
		c.YouTube.YtdlpTimeout = defaultYtdlpTimeout
	}
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}
	if c.YouTube.TitleRetries <= 0 {
		c.YouTube.TitleRetries = defaultTitleRetries
	}
	if c.YouTube.TitleRetryDelayMillis < 0 {
		c.YouTube.TitleRetryDelayMillis = 0
	}
	if c.YouTube.RequestDelayMillis < 0 {
		c.YouTube.RequestDelayMillis = 0
	}

	langs := make([]string, 0, len(c.YouTube.Languages))
	seen := make(map[string]struct{}, len(c.YouTube.Languages))
	for _, lang := range c.YouTube.Languages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	if len(langs) == 0 {
		langs = []string{defaultCaptionLanguage}
	}
	c.YouTube.Languages = langs
}

func (c *Config) normalizeQuiz() {
	c.Quiz.Provider = strings.ToLower(strings.TrimSpace(c.Quiz.Provider))
	if c.Quiz.Provider == "" {
		c.Quiz.Provider = defaultQuizProvider
	}
	c.Quiz.Endpoint = strings.TrimSpace(c.Quiz.Endpoint)
	c.Quiz.Model = strings.TrimSpace(c.Quiz.Model)
	c.Quiz.Referer = strings.TrimSpace(c.Quiz.Referer)
	c.Quiz.Title = strings.TrimSpace(c.Quiz.Title)
	c.Quiz.APIKey = strings.TrimSpace(c.Quiz.APIKey)

	switch c.Quiz.Provider {
	case ProviderHuggingFace:
		if c.Quiz.Endpoint == "" {
			c.Quiz.Endpoint = defaultHuggingFaceEndpoint
		}
		c.Quiz.APIKey = firstNonEmpty(c.Quiz.APIKey, lookupEnv("HF_TOKEN"), lookupEnv("HUGGING_FACE_HUB_TOKEN"))
	case ProviderOpenRouter:
		if c.Quiz.Endpoint == "" {
			c.Quiz.Endpoint = defaultOpenRouterEndpoint
		}
		if c.Quiz.Model == "" {
			c.Quiz.Model = defaultOpenRouterModel
		}
		if c.Quiz.Referer == "" {
			c.Quiz.Referer = defaultQuizReferer
		}
		if c.Quiz.Title == "" {
			c.Quiz.Title = defaultQuizTitle
		}
		c.Quiz.APIKey = firstNonEmpty(c.Quiz.APIKey, lookupEnv("OPENROUTER_API_KEY"))
	case ProviderOpenAI:
		if c.Quiz.Model == "" {
			c.Quiz.Model = defaultOpenAIModel
		}
		c.Quiz.APIKey = firstNonEmpty(c.Quiz.APIKey, lookupEnv("OPENAI_API_KEY"))
	}

	if c.Quiz.TimeoutSeconds <= 0 {
		c.Quiz.TimeoutSeconds = defaultQuizTimeoutSeconds
	}
	if c.Quiz.MaxContentChars <= 0 {
		c.Quiz.MaxContentChars = defaultQuizMaxContentChars
	}
	if c.Quiz.MaxLength <= 0 {
		c.Quiz.MaxLength = defaultQuizMaxLength
	}
	if c.Quiz.RateLimitWaitSeconds < 0 {
		c.Quiz.RateLimitWaitSeconds = 0
	}
	if c.Quiz.MaxQuestions <= 0 {
		c.Quiz.MaxQuestions = defaultQuizMaxQuestions
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func lookupEnv(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
