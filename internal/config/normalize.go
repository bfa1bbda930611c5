package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeAudio()
	c.normalizeTranscription()
	c.normalizeEmotion()
	c.normalizeLLM()
	c.normalizeRender()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatasetDir) == "" {
		c.Paths.DatasetDir = defaultDatasetDir
	}
	if c.Paths.DatasetDir, err = expandPath(c.Paths.DatasetDir); err != nil {
		return fmt.Errorf("paths.dataset_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TmpDir) == "" {
		c.Paths.TmpDir = filepath.Join(c.Paths.OutputDir, "tmp")
	}
	if c.Paths.TmpDir, err = expandPath(c.Paths.TmpDir); err != nil {
		return fmt.Errorf("paths.tmp_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = filepath.Join(c.Paths.CacheDir, defaultHistoryDBName)
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
}

func (c *Config) normalizeAudio() {
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = defaultChannels
	}
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Backend = strings.ToLower(strings.TrimSpace(t.Backend))
	if t.Backend == "" {
		t.Backend = "whisper"
	}
	t.Model = strings.ToLower(strings.TrimSpace(t.Model))
	if t.Model == "" {
		t.Model = defaultWhisperModel
	}
	t.Language = strings.ToLower(strings.TrimSpace(t.Language))
	t.WhisperCommand = strings.TrimSpace(t.WhisperCommand)
	if t.WhisperCommand == "" {
		t.WhisperCommand = defaultWhisperCommand
	}
	t.APIURL = strings.TrimSpace(t.APIURL)
	if t.APIURL == "" {
		t.APIURL = defaultTranscribeURL
	}
	t.APIModel = strings.TrimSpace(t.APIModel)
	if t.APIModel == "" {
		t.APIModel = defaultTranscribeModel
	}
	t.APIKey = strings.TrimSpace(t.APIKey)
	if t.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			t.APIKey = strings.TrimSpace(value)
		}
	}
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = defaultTranscribeTO
	}
}

func (c *Config) normalizeEmotion() {
	e := &c.Emotion
	e.Backend = strings.ToLower(strings.TrimSpace(e.Backend))
	if e.Backend == "" {
		e.Backend = defaultEmotionBackend
	}
	e.ServiceURL = strings.TrimRight(strings.TrimSpace(e.ServiceURL), "/")
	if e.ServiceURL == "" {
		if value, ok := os.LookupEnv("EMOTION_SERVICE_URL"); ok && strings.TrimSpace(value) != "" {
			e.ServiceURL = strings.TrimRight(strings.TrimSpace(value), "/")
		} else {
			e.ServiceURL = defaultEmotionURL
		}
	}
	if e.TimeoutSeconds <= 0 {
		e.TimeoutSeconds = defaultEmotionTO
	}
}

func (c *Config) normalizeLLM() {
	l := &c.LLM
	l.BaseURL = strings.TrimSpace(l.BaseURL)
	if l.BaseURL == "" {
		l.BaseURL = defaultLLMBaseURL
	}
	l.Model = strings.TrimSpace(l.Model)
	if l.Model == "" {
		l.Model = defaultLLMModel
	}
	l.Referer = strings.TrimSpace(l.Referer)
	if l.Referer == "" {
		l.Referer = defaultLLMReferer
	}
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		l.Title = defaultLLMTitle
	}
	if l.TimeoutSeconds <= 0 {
		l.TimeoutSeconds = defaultLLMTimeout
	}
	l.APIKey = strings.TrimSpace(l.APIKey)
	if l.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			l.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeRender() {
	r := &c.Render
	if r.FrameWidth <= 0 {
		r.FrameWidth = defaultFrameWidth
	}
	if r.FrameHeight <= 0 {
		r.FrameHeight = defaultFrameHeight
	}
	if r.ImageSize <= 0 {
		r.ImageSize = defaultImageSize
	}
	if r.LetterDelayMS <= 0 {
		r.LetterDelayMS = defaultLetterDelayMS
	}
	if r.TokenDelayMS <= 0 {
		r.TokenDelayMS = defaultTokenDelayMS
	}
	if r.CombinedDelayMS <= 0 {
		r.CombinedDelayMS = defaultCombinedDelayMS
	}
	if r.PauseFrames < 0 {
		r.PauseFrames = 0
	}
}

func (c *Config) normalizeTools() {
	c.Tools.YTDLP = firstNonEmpty(c.Tools.YTDLP, "yt-dlp")
	c.Tools.FFmpeg = firstNonEmpty(c.Tools.FFmpeg, "ffmpeg")
	c.Tools.FFprobe = firstNonEmpty(c.Tools.FFprobe, "ffprobe")
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func firstNonEmpty(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
