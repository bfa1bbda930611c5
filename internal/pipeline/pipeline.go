package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"voice2sign/internal/emotion"
	"voice2sign/internal/gloss"
	"voice2sign/internal/history"
	"voice2sign/internal/logging"
	"voice2sign/internal/services"
	"voice2sign/internal/signs"
	"voice2sign/internal/stagecache"
	"voice2sign/internal/timeline"
	"voice2sign/internal/transcribe"
	"voice2sign/internal/youtube"
)

// Downloader produces the WAV for a video.
type Downloader interface {
	Download(ctx context.Context, url, videoID string) (youtube.Record, error)
}

// TranscriberFactory builds a transcriber for the requested model size.
type TranscriberFactory func(model string) (transcribe.Transcriber, error)

// ClassifierFactory builds the emotion classifier.
type ClassifierFactory func() (emotion.Classifier, error)

// HistoryRecorder stores one row per run.
type HistoryRecorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Request describes one analysis.
type Request struct {
	URL            string
	EmotionEnabled bool
	// Model overrides the configured whisper model when set.
	Model string
}

// Summary is the whole-video record cached as video_<id>.json.
type Summary struct {
	VideoID         string         `json:"video_id"`
	URL             string         `json:"url"`
	Language        string         `json:"language"`
	Model           string         `json:"model"`
	Emotion         bool           `json:"emotion"`
	StagesFromCache []string       `json:"stages_from_cache"`
	Stats           timeline.Stats `json:"stats"`
	RequestID       string         `json:"request_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Result is everything one run produced.
type Result struct {
	VideoID         string                `json:"video_id"`
	Download        youtube.Record        `json:"download"`
	Transcript      transcribe.Transcript `json:"transcript"`
	Gloss           emotion.Result        `json:"gloss"`
	Timeline        timeline.Timeline     `json:"timeline"`
	StagesFromCache []string              `json:"stages_from_cache"`
	Summary         Summary               `json:"summary"`
}

// Options holds the settings the runner reads on every run.
type Options struct {
	OutputDir    string
	DatasetDir   string
	DefaultModel string
	KeepNegation bool
}

// Deps are the collaborators a Runner drives. History may be nil.
type Deps struct {
	Cache       *stagecache.Cache
	Downloader  Downloader
	Transcriber TranscriberFactory
	Classifier  ClassifierFactory
	History     HistoryRecorder
}

// Runner executes the analysis pipeline.
type Runner struct {
	opts         Options
	cache        *stagecache.Cache
	downloader   Downloader
	transcribers TranscriberFactory
	classifiers  ClassifierFactory
	history      HistoryRecorder
	logger       *slog.Logger
	newRequestID func() string
	now          func() time.Time
}

// New creates a runner.
func New(opts Options, deps Deps, logger *slog.Logger) *Runner {
	if opts.DefaultModel == "" {
		opts.DefaultModel = transcribe.DefaultModel
	}
	return &Runner{
		opts:         opts,
		cache:        deps.Cache,
		downloader:   deps.Downloader,
		transcribers: deps.Transcriber,
		classifiers:  deps.Classifier,
		history:      deps.History,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		newRequestID: uuid.NewString,
		now:          time.Now,
	}
}

// Cache exposes the stage cache the runner reads and writes.
func (r *Runner) Cache() *stagecache.Cache {
	return r.cache
}

// Run analyzes req.URL, reusing every cached stage.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	videoID := youtube.ExtractVideoID(strings.TrimSpace(req.URL))
	if videoID == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "extract video id", "Invalid YouTube URL", nil)
	}
	if err := stagecache.ValidateVideoID(videoID); err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "extract video id", "Invalid YouTube URL", err)
	}
	model := strings.ToLower(strings.TrimSpace(req.Model))
	if model == "" {
		model = r.opts.DefaultModel
	}

	requestID := r.newRequestID()
	ctx = services.WithVideoID(services.WithRequestID(ctx, requestID), videoID)
	logger := logging.WithContext(ctx, r.logger)

	unlock, err := r.lockVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	logger.Info("analysis started",
		logging.Event("analysis_start"),
		logging.String("url", req.URL),
		logging.String("model", model),
		logging.Bool("emotion", req.EmotionEnabled))

	result, err := r.run(ctx, videoID, req, model)
	entry := history.Entry{
		VideoID:   videoID,
		URL:       req.URL,
		Emotion:   req.EmotionEnabled,
		Model:     model,
		RequestID: requestID,
		Status:    history.StatusCompleted,
		CreatedAt: r.now().UTC(),
	}
	if err != nil {
		entry.Status = history.StatusFailed
		entry.ErrorMessage = services.UserMessage(err)
		r.recordHistory(ctx, entry)
		logger.Error("analysis failed",
			logging.Event("analysis_failure"),
			logging.Error(err))
		return nil, err
	}

	result.Summary = Summary{
		VideoID:         videoID,
		URL:             req.URL,
		Language:        result.Transcript.Language,
		Model:           model,
		Emotion:         req.EmotionEnabled,
		StagesFromCache: result.StagesFromCache,
		Stats:           timeline.Summary(result.Timeline, result.Transcript),
		RequestID:       requestID,
		CreatedAt:       entry.CreatedAt,
	}
	if err := r.cache.SaveSummary(videoID, result.Summary); err != nil {
		logging.WarnWithContext(logger, "analysis summary not cached", "summary_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that cache_dir is writable"),
			logging.String(logging.FieldImpact, "the video is listed from its stage files only"))
	}

	entry.Language = result.Summary.Language
	entry.Segments = result.Summary.Stats.Segments
	entry.SignItems = result.Summary.Stats.SignItems
	entry.Words = result.Summary.Stats.Words
	entry.DurationSeconds = result.Summary.Stats.Duration
	entry.StagesFromCache = result.StagesFromCache
	r.recordHistory(ctx, entry)

	logger.Info("analysis complete",
		logging.Event("analysis_complete"),
		logging.Int("segments", result.Summary.Stats.Segments),
		logging.Int("sign_items", result.Summary.Stats.SignItems),
		logging.String("stages_from_cache", strings.Join(result.StagesFromCache, ",")))
	return result, nil
}

func (r *Runner) run(ctx context.Context, videoID string, req Request, model string) (*Result, error) {
	result := &Result{VideoID: videoID, StagesFromCache: []string{}}
	fromCache := &result.StagesFromCache

	record, err := runStage(ctx, r, videoID, stagecache.StageDownload, fromCache,
		func(ctx context.Context) (youtube.Record, error) {
			return r.downloader.Download(ctx, req.URL, videoID)
		})
	if err != nil {
		return nil, err
	}
	result.Download = record
	stem := record.Stem()
	if stem == "" || stem == "." {
		stem = videoID
	}

	transcript, err := runStage(ctx, r, videoID, stagecache.StageTranscribe, fromCache,
		func(ctx context.Context) (transcribe.Transcript, error) {
			tr, err := r.transcribers(model)
			if err != nil {
				return transcribe.Transcript{}, err
			}
			t, err := tr.Transcribe(ctx, record.WAVPath)
			if err != nil {
				return transcribe.Transcript{}, err
			}
			if err := transcribe.Save(t, stem, r.opts.OutputDir); err != nil {
				return transcribe.Transcript{}, services.Wrap(services.ErrTransient, "transcribe", "save", "", err)
			}
			return t, nil
		})
	if err != nil {
		return nil, err
	}
	result.Transcript = transcript

	glossed, err := runStage(ctx, r, videoID, stagecache.StageGloss, fromCache,
		func(context.Context) (gloss.Result, error) {
			inputs := make([]gloss.Input, 0, len(transcript.Segments))
			for _, seg := range transcript.Segments {
				inputs = append(inputs, gloss.Input{ID: seg.ID, Start: seg.Start, End: seg.End, Text: seg.Text})
			}
			g, err := gloss.ProcessSegments(inputs, r.opts.KeepNegation)
			if err != nil {
				return gloss.Result{}, services.Wrap(services.ErrTransient, "gloss", "process segments", "", err)
			}
			return g, nil
		})
	if err != nil {
		return nil, err
	}

	enriched := emotion.FromGloss(glossed)
	if req.EmotionEnabled {
		enriched, err = runStage(ctx, r, videoID, stagecache.StageEmotion, fromCache,
			func(ctx context.Context) (emotion.Result, error) {
				if r.classifiers == nil {
					return emotion.Result{}, services.Wrap(services.ErrConfiguration, "emotion", "init", "no emotion backend configured", nil)
				}
				classifier, err := r.classifiers()
				if err != nil {
					return emotion.Result{}, err
				}
				out, err := emotion.AddEmotion(ctx, classifier, glossed, r.logger)
				if err != nil {
					return emotion.Result{}, err
				}
				if _, err := emotion.Save(out, r.opts.OutputDir); err != nil {
					return emotion.Result{}, services.Wrap(services.ErrTransient, "emotion", "save", "", err)
				}
				return out, nil
			})
		if err != nil {
			return nil, err
		}
	}
	result.Gloss = enriched

	tl, err := runStage(ctx, r, videoID, stagecache.StageTimeline, fromCache,
		func(ctx context.Context) (timeline.Timeline, error) {
			dict, err := signs.LoadDictionary(r.opts.DatasetDir, logging.WithContext(ctx, r.logger))
			if err != nil {
				return timeline.Timeline{}, services.Wrap(services.ErrConfiguration, "timeline", "load sign dictionary", r.opts.DatasetDir, err)
			}
			return timeline.Build(enriched.Segments, dict), nil
		})
	if err != nil {
		return nil, err
	}
	result.Timeline = tl

	if _, err := gloss.Save(enriched, stem, r.opts.OutputDir); err != nil {
		return nil, services.Wrap(services.ErrTransient, "gloss", "save", "", err)
	}
	if _, err := timeline.Save(tl, stem, r.opts.OutputDir); err != nil {
		return nil, services.Wrap(services.ErrTransient, "timeline", "save", "", err)
	}
	return result, nil
}

func (r *Runner) recordHistory(ctx context.Context, entry history.Entry) {
	if r.history == nil {
		return
	}
	if _, err := r.history.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history row not recorded", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_db"),
			logging.String(logging.FieldImpact, "the run is missing from recent analyses"))
	}
}

// Load rebuilds a Result from cached stage files without running anything.
func (r *Runner) Load(ctx context.Context, videoID string) (*Result, error) {
	if err := stagecache.ValidateVideoID(videoID); err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "load", "", err)
	}
	result := &Result{VideoID: videoID}

	var tl timeline.Timeline
	hit, err := r.cache.LoadStage(videoID, stagecache.StageTimeline, &tl)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "load", "", err)
	}
	if !hit {
		return nil, services.Wrap(services.ErrNotFound, "pipeline", "load",
			fmt.Sprintf("no cached analysis for %s", videoID), nil)
	}
	result.Timeline = tl

	if _, err := r.cache.LoadStage(videoID, stagecache.StageDownload, &result.Download); err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "load", "", err)
	}
	if _, err := r.cache.LoadStage(videoID, stagecache.StageTranscribe, &result.Transcript); err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "load", "", err)
	}
	hasEmotion, err := r.cache.LoadStage(videoID, stagecache.StageEmotion, &result.Gloss)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "load", "", err)
	}
	if !hasEmotion {
		var g gloss.Result
		if _, err := r.cache.LoadStage(videoID, stagecache.StageGloss, &g); err != nil {
			return nil, services.Wrap(services.ErrTransient, "pipeline", "load", "", err)
		}
		result.Gloss = emotion.FromGloss(g)
	}

	hasSummary, err := r.cache.LoadSummary(videoID, &result.Summary)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "load", "", err)
	}
	if !hasSummary {
		result.Summary = Summary{
			VideoID:  videoID,
			URL:      youtube.WatchURL(videoID),
			Language: result.Transcript.Language,
			Model:    result.Transcript.Model,
			Emotion:  hasEmotion,
			Stats:    timeline.Summary(tl, result.Transcript),
		}
	}
	// The summary records what the last run reused; stage files alone only
	// say what exists now.
	if hasSummary {
		result.StagesFromCache = append([]string{}, result.Summary.StagesFromCache...)
	} else {
		result.StagesFromCache = make([]string, 0, len(stagecache.Stages))
		for _, stage := range stagecache.Stages {
			if r.cache.HasStage(videoID, stage) {
				result.StagesFromCache = append(result.StagesFromCache, string(stage))
			}
		}
	}
	logging.WithContext(services.WithVideoID(ctx, videoID), r.logger).Debug("analysis loaded from cache",
		logging.Int("segments", len(tl.Timeline)))
	return result, nil
}
