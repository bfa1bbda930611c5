package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"voice2sign/internal/language"
	"voice2sign/internal/logging"
	"voice2sign/internal/services"
)

// Defaults for the whisper CLI backend.
const (
	DefaultModel          = "base"
	DefaultWhisperCommand = "whisper"
	whisperOutputFormat   = "json"
)

// Whisper runs the openai-whisper command line tool.
type Whisper struct {
	opts          Options
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewWhisper creates a CLI-backed transcriber.
func NewWhisper(opts Options, logger *slog.Logger) *Whisper {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.WhisperCommand == "" {
		opts.WhisperCommand = DefaultWhisperCommand
	}
	return &Whisper{opts: opts, logger: logging.NewComponentLogger(logger, "whisper")}
}

// WithCommandRunner sets a custom command runner (for testing).
func (w *Whisper) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	w.commandRunner = runner
}

// Model returns the configured model name for logging.
func (w *Whisper) Model() string {
	return w.opts.Model
}

func (w *Whisper) run(ctx context.Context, name string, args ...string) error {
	if w.commandRunner != nil {
		return w.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe runs whisper on wavPath and loads the JSON it writes.
func (w *Whisper) Transcribe(ctx context.Context, wavPath string) (Transcript, error) {
	if strings.TrimSpace(wavPath) == "" {
		return Transcript{}, services.Wrap(services.ErrValidation, stageName, "whisper", "audio path required", nil)
	}
	outputDir := w.opts.WorkDir
	if outputDir == "" {
		outputDir = filepath.Dir(wavPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Transcript{}, services.Wrap(services.ErrConfiguration, stageName, "whisper", "ensure output dir", err)
	}

	runCtx, cancel := withTimeout(ctx, w.opts.Timeout)
	defer cancel()

	logger := logging.WithContext(ctx, w.logger)
	logger.Info("whisper transcription started",
		logging.String("model", w.opts.Model),
		logging.String("audio", wavPath))
	started := time.Now()

	if err := w.run(runCtx, w.opts.WhisperCommand, w.buildArgs(wavPath, outputDir)...); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return Transcript{}, services.Wrap(services.ErrTimeout, stageName, "whisper",
				fmt.Sprintf("transcription exceeded %s", w.opts.Timeout), err)
		}
		return Transcript{}, services.Wrap(services.ErrExternalTool, stageName, "whisper", "transcription failed", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	raw, err := loadWhisperJSON(jsonPath)
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalTool, stageName, "whisper", "read whisper output", err)
	}
	transcript := normalize(raw, wavPath, w.opts.Model)

	logger.Info("whisper transcription complete",
		logging.Int("segments", len(transcript.Segments)),
		logging.String("language", transcript.Language),
		logging.Duration("elapsed", time.Since(started)))
	return transcript, nil
}

// buildArgs constructs the whisper command arguments.
func (w *Whisper) buildArgs(source, outputDir string) []string {
	args := []string{
		source,
		"--model", w.opts.Model,
		"--output_format", whisperOutputFormat,
		"--output_dir", outputDir,
		"--verbose", "False",
		"--fp16", "False",
	}
	if lang := language.ToISO2(w.opts.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

func loadWhisperJSON(path string) (rawTranscript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rawTranscript{}, err
	}
	var raw rawTranscript
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawTranscript{}, fmt.Errorf("parse whisper json: %w", err)
	}
	return raw, nil
}
