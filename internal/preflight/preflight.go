package preflight

import (
	"context"

	"subman/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckWritableTarget("Subtitles directory", cfg.Paths.SubtitlesDir))
	results = append(results, CheckWritableTarget("Manuscripts directory", cfg.Paths.ManuscriptsDir))
	results = append(results, CheckWritableTarget("Tests directory", cfg.Paths.QuizzesDir))
	results = append(results, CheckWritableTarget("State directory", cfg.Paths.StateDir))

	results = append(results, CheckYtdlp(ctx, cfg))

	if cfg.YouTube.APIKey != "" {
		results = append(results, CheckYouTubeAPI(ctx, cfg.YouTube.APIKey))
	}

	results = append(results, CheckQuizProvider(ctx, cfg))

	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
