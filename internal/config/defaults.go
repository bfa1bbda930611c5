package config

const (
	defaultConfigPath      = "~/.config/voice2sign/config.toml"
	projectConfigName      = "voice2sign.toml"
	defaultOutputDir       = "output"
	defaultCacheDir        = "cache"
	defaultDatasetDir      = "datasets/data"
	defaultHistoryDBName   = "history.db"
	defaultServerBind      = "0.0.0.0:8501"
	defaultSampleRate      = 16000
	defaultChannels        = 1
	defaultWhisperModel    = "base"
	defaultWhisperCommand  = "whisper"
	defaultTranscribeURL   = "https://api.openai.com/v1/audio/transcriptions"
	defaultTranscribeModel = "whisper-1"
	defaultTranscribeTO    = 1800
	defaultEmotionBackend  = "http"
	defaultEmotionURL      = "http://localhost:8000"
	defaultEmotionTO       = 30
	defaultLLMBaseURL      = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel        = "google/gemini-3-flash-preview"
	defaultLLMReferer      = "https://github.com/voice2sign/voice2sign"
	defaultLLMTitle        = "voice2sign emotion tagger"
	defaultLLMTimeout      = 60
	defaultFrameWidth      = 500
	defaultFrameHeight     = 550
	defaultImageSize       = 350
	defaultLetterDelayMS   = 800
	defaultTokenDelayMS    = 300
	defaultCombinedDelayMS = 250
	defaultPauseFrames     = 2
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// WhisperModels lists the accepted whisper model sizes, smallest first.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			CacheDir:   defaultCacheDir,
			DatasetDir: defaultDatasetDir,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Audio: Audio{
			SampleRate: defaultSampleRate,
			Channels:   defaultChannels,
		},
		Transcription: Transcription{
			Backend:        "whisper",
			Model:          defaultWhisperModel,
			WhisperCommand: defaultWhisperCommand,
			APIURL:         defaultTranscribeURL,
			APIModel:       defaultTranscribeModel,
			TimeoutSeconds: defaultTranscribeTO,
		},
		Gloss: Gloss{
			KeepNegation: true,
		},
		Emotion: Emotion{
			Backend:        defaultEmotionBackend,
			ServiceURL:     defaultEmotionURL,
			TimeoutSeconds: defaultEmotionTO,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Render: Render{
			FrameWidth:      defaultFrameWidth,
			FrameHeight:     defaultFrameHeight,
			ImageSize:       defaultImageSize,
			LetterDelayMS:   defaultLetterDelayMS,
			TokenDelayMS:    defaultTokenDelayMS,
			CombinedDelayMS: defaultCombinedDelayMS,
			PauseFrames:     defaultPauseFrames,
		},
		Tools: Tools{
			YTDLP:   "yt-dlp",
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
