package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"voice2sign/internal/services"
)

const stageName = "transcribe"

// Backend names accepted by New.
const (
	BackendWhisper = "whisper"
	BackendAPI     = "api"
)

// Transcriber converts a WAV file into a Transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (Transcript, error)
	Model() string
}

// Options configures either backend.
type Options struct {
	Backend string
	// Model is the whisper model size for the CLI backend.
	Model    string
	Language string
	// WhisperCommand is the whisper executable.
	WhisperCommand string
	// WorkDir receives whisper's intermediate output files.
	WorkDir  string
	APIURL   string
	APIKey   string
	APIModel string
	Timeout  time.Duration
}

// New returns the backend selected by opts.Backend.
func New(opts Options, logger *slog.Logger) (Transcriber, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendWhisper:
		return NewWhisper(opts, logger), nil
	case BackendAPI:
		if strings.TrimSpace(opts.APIURL) == "" {
			return nil, services.Wrap(services.ErrConfiguration, stageName, "init", "transcription.api_url is required for the api backend", nil)
		}
		return NewAPI(opts, &http.Client{Timeout: opts.Timeout}, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, stageName, "init",
			fmt.Sprintf("unknown transcription backend %q", opts.Backend), nil)
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
