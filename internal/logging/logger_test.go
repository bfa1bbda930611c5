package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voice2sign/internal/config"
	"voice2sign/internal/logging"
	"voice2sign/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(data)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content := readLog(t, filepath.Join(cfg.Paths.LogDir, "voice2sign.log"))
	if !strings.Contains(content, "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleHeaderLiftsComponentVideoAndStage(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(services.WithVideoID(context.Background(), "abc123"), "gloss")
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline"))
	log.Info("stage complete", logging.Int("segments", 3), logging.String("note", "two words"))

	content := readLog(t, logPath)
	for _, want := range []string{"INFO", "[pipeline]", "abc123/gloss:", "stage complete", "segments=3", `note="two words"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
	if strings.Contains(content, "video_id=") || strings.Contains(content, ".go:") {
		t.Fatalf("unexpected fields in info line: %q", content)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(services.WithVideoID(context.Background(), "vid"), "req-1")
	logging.WithContext(ctx, logger).Info("json message")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if entry["msg"] != "json message" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry[logging.FieldVideoID] != "vid" || entry[logging.FieldCorrelationID] != "req-1" {
		t.Fatalf("missing context fields in %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestJSONLoggerFlattensDurationsAndErrors(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "stage.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	failure := services.Wrap(services.ErrExternalTool, "download", "yt-dlp", "", errors.New("HTTP Error 403"))
	logger.Info("stage failed",
		logging.Event("stage_failure"),
		logging.Duration("elapsed", 1500*time.Millisecond),
		logging.ErrorCategory(failure),
		logging.Error(failure))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if entry["elapsed"] != 1.5 {
		t.Fatalf("elapsed = %v, want 1.5", entry["elapsed"])
	}
	if entry["error"] != failure.Error() {
		t.Fatalf("error = %v, want %q", entry["error"], failure.Error())
	}
	if entry[logging.FieldErrorCategory] != "external_tool" || entry[logging.FieldEventType] != "stage_failure" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("filtered out")
	logging.WarnWithContext(logger, "dataset missing", "dataset_missing", logging.String(logging.FieldErrorHint, "mount the dataset"))

	content := readLog(t, logPath)
	if strings.Contains(content, "filtered out") {
		t.Fatalf("info should be filtered at warn level: %q", content)
	}
	for _, want := range []string{`"event_type":"dataset_missing"`, `"error_hint":"mount the dataset"`, `"impact"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in %q", want, content)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	logging.NewNop().Error("ignored")
	logging.WarnWithContext(nil, "ignored", "noop")
	logging.NewComponentLogger(nil, "x").Info("ignored")
}
