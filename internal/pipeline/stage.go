package pipeline

import (
	"context"
	"time"

	"voice2sign/internal/logging"
	"voice2sign/internal/services"
	"voice2sign/internal/stagecache"
)

// runStage returns the cached output of stage when present and otherwise
// computes it and stores it. Cache hits are appended to fromCache.
func runStage[T any](ctx context.Context, r *Runner, videoID string, stage stagecache.Stage, fromCache *[]string, compute func(context.Context) (T, error)) (T, error) {
	var out T
	stageCtx := services.WithStage(ctx, string(stage))
	logger := logging.WithContext(stageCtx, r.logger)

	hit, err := r.cache.LoadStage(videoID, stage, &out)
	if err != nil {
		return out, services.Wrap(services.ErrTransient, string(stage), "read cache", "", err)
	}
	if hit {
		*fromCache = append(*fromCache, string(stage))
		logger.Info("stage loaded from cache",
			logging.Event("stage_cache_hit"),
			logging.String("cache_file", r.cache.StagePath(videoID, stage)))
		return out, nil
	}

	logger.Info("stage started", logging.Event("stage_start"))
	started := time.Now()
	out, err = compute(stageCtx)
	if err != nil {
		logger.Error("stage failed",
			logging.Event("stage_failure"),
			logging.ErrorCategory(err),
			logging.Error(err))
		return out, err
	}
	if err := r.cache.SaveStage(videoID, stage, out); err != nil {
		logging.WarnWithContext(logger, "stage result not cached", "stage_cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that cache_dir is writable"),
			logging.String(logging.FieldImpact, "the stage will be recomputed on the next run"))
	}
	logger.Info("stage completed",
		logging.Event("stage_complete"),
		logging.Duration("elapsed", time.Since(started)))
	return out, nil
}
