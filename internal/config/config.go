package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	CacheDir   string `toml:"cache_dir"`
	DatasetDir string `toml:"dataset_dir"`
	TmpDir     string `toml:"tmp_dir"`
	LogDir     string `toml:"log_dir"`
	HistoryDB  string `toml:"history_db"`
}

// Server contains web UI settings.
type Server struct {
	Bind     string `toml:"bind"`
	// APIToken guards the /api/ endpoints when set.
	APIToken string `toml:"api_token"`
}

// Audio describes the WAV produced by the download stage.
type Audio struct {
	SampleRate int `toml:"sample_rate"`
	Channels   int `toml:"channels"`
}

// Transcription contains speech-to-text backend settings.
type Transcription struct {
	Backend        string `toml:"backend"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	WhisperCommand string `toml:"whisper_command"`
	APIURL         string `toml:"api_url"`
	APIKey         string `toml:"api_key"`
	APIModel       string `toml:"api_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Gloss contains text-to-gloss conversion settings.
type Gloss struct {
	KeepNegation bool `toml:"keep_negation"`
}

// Emotion contains per-segment emotion classification settings.
type Emotion struct {
	Enabled        bool   `toml:"enabled"`
	Backend        string `toml:"backend"`
	ServiceURL     string `toml:"service_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains connection settings for the chat-completions emotion backend.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Render contains fingerspelling GIF settings.
type Render struct {
	FrameWidth      int `toml:"frame_width"`
	FrameHeight     int `toml:"frame_height"`
	ImageSize       int `toml:"image_size"`
	LetterDelayMS   int `toml:"letter_delay_ms"`
	TokenDelayMS    int `toml:"token_delay_ms"`
	CombinedDelayMS int `toml:"combined_delay_ms"`
	PauseFrames     int `toml:"pause_frames"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	YTDLP   string `toml:"ytdlp"`
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for voice2sign.
//
// Configuration sections by subsystem:
//   - Paths: output, cache, dataset and scratch directories
//   - Server: web UI bind address
//   - Audio: WAV sample rate and channel count
//   - Transcription: whisper CLI or HTTP transcription backend
//   - Gloss: gloss conversion rules
//   - Emotion: optional emotion tagging backend
//   - LLM: chat-completions settings for the llm emotion backend
//   - Render: fingerspelling GIF geometry and timing
//   - Tools: yt-dlp, ffmpeg and ffprobe binaries
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Server        Server        `toml:"server"`
	Audio         Audio         `toml:"audio"`
	Transcription Transcription `toml:"transcription"`
	Gloss         Gloss         `toml:"gloss"`
	Emotion       Emotion       `toml:"emotion"`
	LLM           LLM           `toml:"llm"`
	Render        Render        `toml:"render"`
	Tools         Tools         `toml:"tools"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// EnsureDirectories creates the writable directories the pipeline needs.
// The dataset directory is read-only input and is never created.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.CacheDir, c.Paths.TmpDir, c.GIFDir()}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	if c.Paths.HistoryDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// GIFDir is where reusable letter and token GIFs are written.
func (c *Config) GIFDir() string {
	return filepath.Join(c.Paths.OutputDir, "gifs")
}

// TranscriptionTimeout returns the per-request transcription timeout.
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

// EmotionTimeout returns the per-request emotion service timeout.
func (c *Config) EmotionTimeout() time.Duration {
	return time.Duration(c.Emotion.TimeoutSeconds) * time.Second
}

// LLMConfig contains the chat-completions settings used by the llm emotion backend.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the trimmed LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		switch {
		case pathValue == "~":
			pathValue = home
		case len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\'):
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
