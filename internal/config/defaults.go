package config

const (
	defaultConfigPath           = "~/.config/subman/config.toml"
	defaultSubtitlesDir         = "youtube_subtitles"
	defaultManuscriptsDir       = "test_manuscripts"
	defaultQuizzesDir           = "generated_tests"
	defaultStateDir             = "~/.local/share/subman"
	defaultLogDir               = "~/.local/share/subman/logs"
	defaultYtdlpPath            = "yt-dlp"
	defaultYtdlpTimeout         = 120
	defaultRequestDelayMillis   = 500
	defaultTitleRetries         = 3
	defaultTitleRetryDelay      = 1000
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultQuizProvider         = ProviderHuggingFace
	defaultHuggingFaceEndpoint  = "https://api-inference.huggingface.co/models/google/flan-t5-large"
	defaultOpenRouterEndpoint   = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel      = "google/gemini-3-flash-preview"
	defaultOpenAIModel          = "gpt-4o-mini"
	defaultQuizReferer          = "https://github.com/subman/subman"
	defaultQuizTitle            = "subman quiz generator"
	defaultQuizTimeoutSeconds   = 120
	defaultQuizMaxContentChars  = 4000
	defaultQuizMaxLength        = 1000
	defaultQuizTemperature      = 0.7
	defaultQuizTopP             = 0.9
	defaultQuizRateLimitWait    = 20
	defaultQuizMaxQuestions     = 10
	defaultCaptionLanguage      = "en"
	defaultCatalogEnabled       = true
	defaultYouTubeScrapesTitles = true
)

// Quiz provider names accepted by quiz.provider.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenRouter  = "openrouter"
	ProviderOpenAI      = "openai"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SubtitlesDir:   defaultSubtitlesDir,
			ManuscriptsDir: defaultManuscriptsDir,
			QuizzesDir:     defaultQuizzesDir,
			StateDir:       defaultStateDir,
			LogDir:         defaultLogDir,
		},
		YouTube: YouTube{
			YtdlpPath:             defaultYtdlpPath,
			YtdlpTimeout:          defaultYtdlpTimeout,
			Languages:             []string{defaultCaptionLanguage},
			RequestDelayMillis:    defaultRequestDelayMillis,
			TitleRetries:          defaultTitleRetries,
			TitleRetryDelayMillis: defaultTitleRetryDelay,
			ScrapeTitles:          defaultYouTubeScrapesTitles,
		},
		Quiz: Quiz{
			Provider:             defaultQuizProvider,
			TimeoutSeconds:       defaultQuizTimeoutSeconds,
			MaxContentChars:      defaultQuizMaxContentChars,
			MaxLength:            defaultQuizMaxLength,
			Temperature:          defaultQuizTemperature,
			TopP:                 defaultQuizTopP,
			RateLimitWaitSeconds: defaultQuizRateLimitWait,
			MaxQuestions:         defaultQuizMaxQuestions,
		},
		Catalog: Catalog{
			Enabled: defaultCatalogEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
