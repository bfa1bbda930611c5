package youtube

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/shopspring/decimal"
	"lukechampine.com/blake3"

	"voice2sign/internal/logging"
	"voice2sign/internal/media/ffprobe"
	"voice2sign/internal/services"
)

const stageName = "download"

// Record is the cached output of the download stage.
type Record struct {
	WAVPath    string  `json:"wav_path"`
	Duration   float64 `json:"duration"`
	Format     string  `json:"format"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	AudioHash  string  `json:"audio_hash,omitempty"`
}

// Stem is the file name stem shared by every artifact derived from the WAV.
func (r Record) Stem() string {
	return strings.TrimSuffix(filepath.Base(r.WAVPath), filepath.Ext(r.WAVPath))
}

// Options configures a Downloader.
type Options struct {
	YTDLPBinary   string
	FFmpegBinary  string
	FFprobeBinary string
	TmpDir        string
	OutputDir     string
	SampleRate    int
	Channels      int
}

// FetchFunc downloads the best audio for url using outputTemplate
// (a yt-dlp template such as /tmp/<id>.%(ext)s).
type FetchFunc func(ctx context.Context, url, outputTemplate string) error

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Downloader fetches YouTube audio with yt-dlp and converts it to a WAV.
type Downloader struct {
	opts          Options
	logger        *slog.Logger
	fetch         FetchFunc
	probe         ProbeFunc
	commandRunner func(ctx context.Context, name string, args ...string) error
	lookPath      func(file string) (string, error)
}

// NewDownloader creates a downloader backed by go-ytdlp, ffmpeg and ffprobe.
func NewDownloader(opts Options, logger *slog.Logger) *Downloader {
	if opts.YTDLPBinary == "" {
		opts.YTDLPBinary = "yt-dlp"
	}
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.FFprobeBinary == "" {
		opts.FFprobeBinary = "ffprobe"
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	if opts.Channels <= 0 {
		opts.Channels = 1
	}
	d := &Downloader{
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "youtube"),
		lookPath: exec.LookPath,
	}
	d.fetch = d.ytdlpFetch
	d.probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, d.opts.FFprobeBinary, path)
	}
	return d
}

// WithFetcher replaces the yt-dlp fetch step (for testing).
func (d *Downloader) WithFetcher(fetch FetchFunc) {
	d.fetch = fetch
}

// WithProber replaces the ffprobe step (for testing).
func (d *Downloader) WithProber(probe ProbeFunc) {
	d.probe = probe
}

// WithCommandRunner sets a custom command runner for ffmpeg (for testing).
// The ffmpeg binary lookup is skipped when a runner is set.
func (d *Downloader) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	d.commandRunner = runner
	d.lookPath = func(file string) (string, error) { return file, nil }
}

// Download fetches the audio for url and writes <output>/<videoID>.wav.
func (d *Downloader) Download(ctx context.Context, rawURL, videoID string) (Record, error) {
	if strings.TrimSpace(videoID) == "" {
		return Record{}, services.Wrap(services.ErrValidation, stageName, "download", "video id required", nil)
	}
	ffmpegPath, err := d.lookPath(d.opts.FFmpegBinary)
	if err != nil {
		return Record{}, services.Wrap(services.ErrConfiguration, stageName, "locate ffmpeg",
			"FFmpeg not found; install it and add it to PATH", err)
	}
	for _, dir := range []string{d.opts.TmpDir, d.opts.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Record{}, services.Wrap(services.ErrConfiguration, stageName, "prepare directories", dir, err)
		}
	}

	logger := logging.WithContext(ctx, d.logger)
	template := filepath.Join(d.opts.TmpDir, videoID+".%(ext)s")
	logger.Info("fetching audio", logging.String("url", rawURL))
	if err := d.fetch(ctx, rawURL, template); err != nil {
		return Record{}, services.Wrap(services.ErrExternalTool, stageName, "yt-dlp", "audio download failed", err)
	}

	source, err := findDownloaded(d.opts.TmpDir, videoID)
	if err != nil {
		return Record{}, services.Wrap(services.ErrExternalTool, stageName, "yt-dlp", "locate downloaded audio", err)
	}
	defer os.Remove(source)

	wavPath := filepath.Join(d.opts.OutputDir, videoID+".wav")
	args := buildConvertArgs(source, wavPath, d.opts.SampleRate, d.opts.Channels)
	if err := d.run(ctx, ffmpegPath, args...); err != nil {
		return Record{}, services.Wrap(services.ErrExternalTool, stageName, "ffmpeg", "convert to wav", err)
	}

	record := Record{WAVPath: wavPath, Format: "wav", SampleRate: d.opts.SampleRate, Channels: d.opts.Channels}
	if probe, err := d.probe(ctx, wavPath); err != nil {
		logging.WarnWithContext(logger, "ffprobe failed; duration unknown", "ffprobe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffprobe alongside ffmpeg"),
			logging.String(logging.FieldImpact, "download record has no duration"))
	} else {
		record.Duration = RoundSeconds(probe.DurationSeconds())
		if name := probe.FormatName(); name != "" {
			record.Format = name
		}
		if rate := probe.SampleRate(); rate > 0 {
			record.SampleRate = rate
		}
		if channels := probe.Channels(); channels > 0 {
			record.Channels = channels
		}
	}

	hash, err := HashFile(wavPath)
	if err != nil {
		return Record{}, services.Wrap(services.ErrTransient, stageName, "hash", "hash wav", err)
	}
	record.AudioHash = hash

	logger.Info("audio ready",
		logging.String("wav_path", wavPath),
		logging.Float64("duration_seconds", record.Duration),
		logging.String("audio_hash", hash))
	return record, nil
}

func (d *Downloader) ytdlpFetch(ctx context.Context, rawURL, outputTemplate string) error {
	_, err := ytdlp.New().
		SetExecutable(d.opts.YTDLPBinary).
		Format("bestaudio/best").
		Output(outputTemplate).
		NoPlaylist().
		NoProgress().
		Quiet().
		Run(ctx, rawURL)
	return err
}

func (d *Downloader) run(ctx context.Context, name string, args ...string) error {
	if d.commandRunner != nil {
		return d.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(name), err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildConvertArgs(source, dest string, sampleRate, channels int) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
}

// findDownloaded returns the file yt-dlp produced for videoID, ignoring
// partial downloads.
func findDownloaded(dir, videoID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, globEscape(videoID)+".*"))
	if err != nil {
		return "", err
	}
	candidates := matches[:0]
	for _, path := range matches {
		switch filepath.Ext(path) {
		case ".part", ".ytdl", ".tmp":
			continue
		}
		if st, err := os.Stat(path); err == nil && !st.IsDir() && st.Size() > 0 {
			candidates = append(candidates, path)
		}
	}
	if len(candidates) == 0 {
		return "", errors.New("yt-dlp produced no audio file")
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

func globEscape(s string) string {
	replacer := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return replacer.Replace(s)
}

// HashFile returns the hex blake3-256 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("calculating blake3 hash from file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RoundSeconds rounds a timestamp to millisecond precision.
func RoundSeconds(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return f
}
