package pipeline

import (
	"log/slog"
	"path/filepath"
	"strings"

	"voice2sign/internal/config"
	"voice2sign/internal/emotion"
	"voice2sign/internal/services"
	"voice2sign/internal/services/llm"
	"voice2sign/internal/stagecache"
	"voice2sign/internal/transcribe"
	"voice2sign/internal/youtube"
)

// NewFromConfig wires the production downloader, transcription backend and
// emotion classifier from cfg.
func NewFromConfig(cfg *config.Config, cache *stagecache.Cache, hist HistoryRecorder, logger *slog.Logger) *Runner {
	downloader := youtube.NewDownloader(youtube.Options{
		YTDLPBinary:   cfg.Tools.YTDLP,
		FFmpegBinary:  cfg.Tools.FFmpeg,
		FFprobeBinary: cfg.Tools.FFprobe,
		TmpDir:        cfg.Paths.TmpDir,
		OutputDir:     cfg.Paths.OutputDir,
		SampleRate:    cfg.Audio.SampleRate,
		Channels:      cfg.Audio.Channels,
	}, logger)

	return New(Options{
		OutputDir:    cfg.Paths.OutputDir,
		DatasetDir:   cfg.Paths.DatasetDir,
		DefaultModel: cfg.Transcription.Model,
		KeepNegation: cfg.Gloss.KeepNegation,
	}, Deps{
		Cache:       cache,
		Downloader:  downloader,
		Transcriber: TranscriberFromConfig(cfg, logger),
		Classifier:  ClassifierFromConfig(cfg),
		History:     hist,
	}, logger)
}

// TranscriberFromConfig returns a factory honouring the per-request model.
func TranscriberFromConfig(cfg *config.Config, logger *slog.Logger) TranscriberFactory {
	return func(model string) (transcribe.Transcriber, error) {
		if model != "" && !config.ValidWhisperModel(model) {
			return nil, services.Wrap(services.ErrValidation, "transcribe", "select model",
				"unknown whisper model "+model, nil)
		}
		return transcribe.New(transcribe.Options{
			Backend:        cfg.Transcription.Backend,
			Model:          model,
			Language:       cfg.Transcription.Language,
			WhisperCommand: cfg.Transcription.WhisperCommand,
			WorkDir:        filepath.Join(cfg.Paths.TmpDir, "whisper"),
			APIURL:         cfg.Transcription.APIURL,
			APIKey:         cfg.Transcription.APIKey,
			APIModel:       cfg.Transcription.APIModel,
			Timeout:        cfg.TranscriptionTimeout(),
		}, logger)
	}
}

// ClassifierFromConfig returns a factory for the configured emotion backend.
func ClassifierFromConfig(cfg *config.Config) ClassifierFactory {
	return func() (emotion.Classifier, error) {
		switch strings.ToLower(cfg.Emotion.Backend) {
		case "", "http":
			return emotion.NewHTTPClassifier(cfg.Emotion.ServiceURL, cfg.EmotionTimeout()), nil
		case "llm":
			settings := cfg.GetLLM()
			if settings.APIKey == "" {
				return nil, services.Wrap(services.ErrConfiguration, "emotion", "init",
					"llm.api_key (or OPENROUTER_API_KEY) is required for the llm emotion backend", nil)
			}
			return emotion.NewLLMClassifier(llm.NewClient(llm.Config{
				APIKey:         settings.APIKey,
				BaseURL:        settings.BaseURL,
				Model:          settings.Model,
				Referer:        settings.Referer,
				Title:          settings.Title,
				TimeoutSeconds: settings.TimeoutSeconds,
			})), nil
		default:
			return nil, services.Wrap(services.ErrConfiguration, "emotion", "init",
				"unknown emotion backend "+cfg.Emotion.Backend, nil)
		}
	}
}
