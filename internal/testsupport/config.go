package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"voice2sign/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Output, cache and dataset directories exist on return; emotion tagging is
// off and logging only reports errors.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.DatasetDir = filepath.Join(base, "data")
	cfgVal.Paths.TmpDir = filepath.Join(base, "output", "tmp")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "cache", "history.db")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Emotion.Enabled = false
	cfgVal.Logging.Level = "error"

	for _, dir := range []string{cfgVal.Paths.OutputDir, cfgVal.Paths.CacheDir, cfgVal.Paths.DatasetDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

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

// WithStubbedBinaries writes stub executables for yt-dlp, ffmpeg, ffprobe
// and whisper and points the config at them.
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		stub := func(name string) string {
			target := filepath.Join(binDir, name)
			WriteStub(b.t, target)
			return target
		}
		b.cfg.Tools.YTDLP = stub("yt-dlp")
		b.cfg.Tools.FFmpeg = stub("ffmpeg")
		b.cfg.Tools.FFprobe = stub("ffprobe")
		b.cfg.Transcription.WhisperCommand = stub("whisper")
	}
}

// WithSignDataset writes one sample image for each letter into the dataset directory.
func WithSignDataset(letters ...string) ConfigOption {
	return func(b *configBuilder) {
		for _, letter := range letters {
			WriteSignSample(b.t, filepath.Join(b.cfg.Paths.DatasetDir, letter), "0.png")
		}
	}
}

// WithSmallFrames shrinks GIF geometry so render tests stay fast.
func WithSmallFrames() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.FrameWidth = 60
		b.cfg.Render.FrameHeight = 70
		b.cfg.Render.ImageSize = 20
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}

// WriteConfig encodes cfg as TOML at path so CLI tests can load it with --config.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
