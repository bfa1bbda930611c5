package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"voice2sign/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("EMOTION_SERVICE_URL", "")
	t.Chdir(work)
	return work
}

func TestLoadDefaultsResolveRelativeToWorkingDir(t *testing.T) {
	work := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if !strings.HasSuffix(resolved, filepath.Join(".config", "voice2sign", "config.toml")) {
		t.Fatalf("unexpected resolved path %q", resolved)
	}

	// t.TempDir may sit behind a symlink; compare against the resolved cwd.
	cwd, _ := os.Getwd()
	if cfg.Paths.OutputDir != filepath.Join(cwd, "output") {
		t.Fatalf("unexpected output dir %q (work %q)", cfg.Paths.OutputDir, work)
	}
	if cfg.Paths.CacheDir != filepath.Join(cwd, "cache") {
		t.Fatalf("unexpected cache dir %q", cfg.Paths.CacheDir)
	}
	if cfg.Paths.DatasetDir != filepath.Join(cwd, "datasets", "data") {
		t.Fatalf("unexpected dataset dir %q", cfg.Paths.DatasetDir)
	}
	if cfg.Paths.TmpDir != filepath.Join(cfg.Paths.OutputDir, "tmp") {
		t.Fatalf("unexpected tmp dir %q", cfg.Paths.TmpDir)
	}
	if cfg.Paths.HistoryDB != filepath.Join(cfg.Paths.CacheDir, "history.db") {
		t.Fatalf("unexpected history db %q", cfg.Paths.HistoryDB)
	}
	if cfg.Server.Bind != "0.0.0.0:8501" {
		t.Fatalf("unexpected bind %q", cfg.Server.Bind)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio settings %+v", cfg.Audio)
	}
	if cfg.Transcription.Model != "base" || cfg.Transcription.Backend != "whisper" {
		t.Fatalf("unexpected transcription defaults %+v", cfg.Transcription)
	}
	if !cfg.Gloss.KeepNegation {
		t.Fatal("expected keep_negation default true")
	}
	if cfg.Emotion.Enabled {
		t.Fatal("expected emotion disabled by default")
	}
	if cfg.Render.LetterDelayMS != 800 || cfg.Render.TokenDelayMS != 300 || cfg.Render.CombinedDelayMS != 250 {
		t.Fatalf("unexpected render delays %+v", cfg.Render)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.CacheDir, cfg.Paths.TmpDir, cfg.GIFDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
	if _, err := os.Stat(cfg.Paths.DatasetDir); !os.IsNotExist(err) {
		t.Fatalf("dataset dir must not be created, stat err=%v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "voice2sign.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Transcription struct {
			Model    string `toml:"model"`
			Language string `toml:"language"`
		} `toml:"transcription"`
		Emotion struct {
			Enabled    bool   `toml:"enabled"`
			ServiceURL string `toml:"service_url"`
		} `toml:"emotion"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(dir, "out")
	custom.Transcription.Model = " Small "
	custom.Transcription.Language = "EN"
	custom.Emotion.Enabled = true
	custom.Emotion.ServiceURL = "http://emotion:9000/"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputDir != filepath.Join(dir, "out") {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Transcription.Model != "small" {
		t.Fatalf("expected model normalized to small, got %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.Language != "en" {
		t.Fatalf("expected language lowercased, got %q", cfg.Transcription.Language)
	}
	if cfg.Emotion.ServiceURL != "http://emotion:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Emotion.ServiceURL)
	}
}

func TestEnvFallbacksForAPIKeys(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", " sk-openai ")
	t.Setenv("OPENROUTER_API_KEY", "sk-router")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.APIKey != "sk-openai" {
		t.Fatalf("expected transcription key from env, got %q", cfg.Transcription.APIKey)
	}
	if cfg.GetLLM().APIKey != "sk-router" {
		t.Fatalf("expected llm key from env, got %q", cfg.GetLLM().APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"unknown model", func(c *config.Config) { c.Transcription.Model = "huge" }, "transcription.model"},
		{"unknown backend", func(c *config.Config) { c.Transcription.Backend = "cloud" }, "transcription.backend"},
		{"bad sample rate", func(c *config.Config) { c.Audio.SampleRate = 100 }, "audio.sample_rate"},
		{"llm without key", func(c *config.Config) {
			c.Emotion.Enabled = true
			c.Emotion.Backend = "llm"
			c.LLM.APIKey = ""
		}, "llm.api_key"},
		{"image larger than frame", func(c *config.Config) { c.Render.ImageSize = 900 }, "render.image_size"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}

func TestValidWhisperModel(t *testing.T) {
	for _, model := range []string{"tiny", "BASE", " large "} {
		if !config.ValidWhisperModel(model) {
			t.Fatalf("expected %q to be valid", model)
		}
	}
	if config.ValidWhisperModel("large-v3") {
		t.Fatal("large-v3 is not an accepted size")
	}
}
