package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"voice2sign/internal/language"
	"voice2sign/internal/logging"
	"voice2sign/internal/services"
)

const (
	DefaultAPIModel = "whisper-1"
	responseFormat  = "verbose_json"
	maxErrorBody    = 4096
)

// API posts audio to an OpenAI-compatible /audio/transcriptions endpoint.
type API struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
}

// NewAPI creates an HTTP-backed transcriber. A nil client uses http.DefaultClient.
func NewAPI(opts Options, client *http.Client, logger *slog.Logger) *API {
	if opts.APIModel == "" {
		opts.APIModel = DefaultAPIModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &API{opts: opts, client: client, logger: logging.NewComponentLogger(logger, "transcription-api")}
}

// Model returns the remote model name.
func (a *API) Model() string {
	return a.opts.APIModel
}

// Transcribe uploads wavPath and normalizes the verbose_json reply.
func (a *API) Transcribe(ctx context.Context, wavPath string) (Transcript, error) {
	if strings.TrimSpace(wavPath) == "" {
		return Transcript{}, services.Wrap(services.ErrValidation, stageName, "api", "audio path required", nil)
	}
	body, contentType, err := a.buildForm(wavPath)
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrValidation, stageName, "api", "build upload", err)
	}

	reqCtx, cancel := withTimeout(ctx, a.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.opts.APIURL, body)
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrConfiguration, stageName, "api", "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	if key := strings.TrimSpace(a.opts.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	logger := logging.WithContext(ctx, a.logger)
	logger.Info("uploading audio for transcription",
		logging.String("endpoint", a.opts.APIURL),
		logging.String("model", a.opts.APIModel))

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return Transcript{}, services.Wrap(services.ErrTimeout, stageName, "api", "transcription request timed out", err)
		}
		return Transcript{}, services.Wrap(services.ErrTransient, stageName, "api", "transcription request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Transcript{}, services.Wrap(statusMarker(resp.StatusCode), stageName, "api",
			fmt.Sprintf("transcription %s", resp.Status), errors.New(strings.TrimSpace(string(snippet))))
	}

	var raw rawTranscript
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Transcript{}, services.Wrap(services.ErrExternalTool, stageName, "api", "decode response", err)
	}
	transcript := normalize(raw, wavPath, a.opts.APIModel)
	logger.Info("transcription received",
		logging.Int("segments", len(transcript.Segments)),
		logging.String("language", transcript.Language))
	return transcript, nil
}

func (a *API) buildForm(wavPath string) (io.Reader, string, error) {
	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, "", err
	}
	defer fd.Close()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	fw, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, fd); err != nil {
		return nil, "", err
	}
	fields := [][2]string{
		{"model", a.opts.APIModel},
		{"response_format", responseFormat},
	}
	if lang := language.ToISO2(a.opts.Language); lang != "" {
		fields = append(fields, [2]string{"language", lang})
	}
	for _, field := range fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &b, w.FormDataContentType(), nil
}

func statusMarker(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.ErrConfiguration
	case status == http.StatusTooManyRequests || status >= 500:
		return services.ErrTransient
	default:
		return services.ErrExternalTool
	}
}
