package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateQuiz(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SubtitlesDir == c.Paths.ManuscriptsDir {
		return errors.New("paths.subtitles_dir and paths.manuscripts_dir must differ")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if strings.TrimSpace(c.YouTube.YtdlpPath) == "" {
		return errors.New("youtube.ytdlp_path must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"youtube.ytdlp_timeout": c.YouTube.YtdlpTimeout,
		"youtube.title_retries": c.YouTube.TitleRetries,
	}); err != nil {
		return err
	}
	if len(c.YouTube.Languages) == 0 {
		return errors.New("youtube.languages must include at least one language")
	}
	return nil
}

func (c *Config) validateQuiz() error {
	switch c.Quiz.Provider {
	case ProviderHuggingFace:
		if c.Quiz.Endpoint == "" {
			return errors.New("quiz.endpoint must be set for the huggingface provider")
		}
	case ProviderOpenRouter, ProviderOpenAI:
		// Keys are checked when a quiz is generated so that download and combine
		// keep working on machines without credentials.
	default:
		return fmt.Errorf("quiz.provider: unsupported value %q (want %s, %s, or %s)",
			c.Quiz.Provider, ProviderHuggingFace, ProviderOpenRouter, ProviderOpenAI)
	}
	if c.Quiz.Temperature < 0 || c.Quiz.Temperature > 2 {
		return errors.New("quiz.temperature must be between 0 and 2")
	}
	if c.Quiz.TopP <= 0 || c.Quiz.TopP > 1 {
		return errors.New("quiz.top_p must be greater than 0 and at most 1")
	}
	return ensurePositiveMap(map[string]int{
		"quiz.timeout_seconds":   c.Quiz.TimeoutSeconds,
		"quiz.max_content_chars": c.Quiz.MaxContentChars,
		"quiz.max_length":        c.Quiz.MaxLength,
		"quiz.max_questions":     c.Quiz.MaxQuestions,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
