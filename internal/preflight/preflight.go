package preflight

import (
	"context"

	"voice2sign/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Emotion backends are only checked when tagging is enabled by default.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir, ReadWrite),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir, ReadWrite),
		CheckDirectoryAccess("Dataset directory", cfg.Paths.DatasetDir, ReadOnly),
	}

	if cfg.Emotion.Enabled {
		switch cfg.Emotion.Backend {
		case "http":
			results = append(results, CheckEmotionService(ctx, cfg.Emotion.ServiceURL, cfg.EmotionTimeout()))
		case "llm":
			results = append(results, CheckLLM(ctx, "Emotion LLM", cfg.GetLLM()))
		}
	}

	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
