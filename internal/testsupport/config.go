package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"subman/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Throttles and retry pauses are zeroed so tests never sleep.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SubtitlesDir = filepath.Join(base, "youtube_subtitles")
	cfgVal.Paths.ManuscriptsDir = filepath.Join(base, "test_manuscripts")
	cfgVal.Paths.QuizzesDir = filepath.Join(base, "generated_tests")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.YouTube.APIKey = ""
	cfgVal.YouTube.ScrapeTitles = false
	cfgVal.YouTube.RequestDelayMillis = 0
	cfgVal.YouTube.TitleRetryDelayMillis = 0
	cfgVal.Quiz.APIKey = ""
	cfgVal.Quiz.RateLimitWaitSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithQuizEndpoint points the quiz provider at a test server.
func WithQuizEndpoint(provider, endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Quiz.Provider = provider
		b.cfg.Quiz.Endpoint = endpoint
	}
}

// WithYtdlpScript writes a shell script standing in for yt-dlp and points
// the config at it.
func WithYtdlpScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.YtdlpPath = WriteScript(b.t, filepath.Join(b.baseDir, "bin"), "yt-dlp", body)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
