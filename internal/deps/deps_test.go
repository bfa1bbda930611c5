package deps

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"voice2sign/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for absolute path: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected blank command to be unconfigured, got %#v", results[2])
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	name := "voice2sign-fake-tool"
	if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{{Name: "tool", Command: name}})
	if !results[0].Available {
		t.Fatalf("expected tool on PATH, got %#v", results[0])
	}
	if results[0].Detail != filepath.Join(binDir, name) {
		t.Fatalf("expected resolved path detail, got %q", results[0].Detail)
	}
}

func TestMissing(t *testing.T) {
	statuses := []Status{
		{Name: "yt-dlp", Available: true},
		{Name: "ffmpeg"},
		{Name: "whisper", Optional: true},
	}
	got := Missing(statuses)
	if len(got) != 1 || got[0] != "ffmpeg" {
		t.Fatalf("unexpected missing list: %v", got)
	}
}

func TestPipelineRequirementsFollowBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Backend = "whisper"
	names := func(reqs []Requirement) []string {
		out := make([]string, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, r.Name)
		}
		return out
	}
	if got := names(PipelineRequirements(&cfg)); !slices.Contains(got, "Whisper") {
		t.Fatalf("whisper backend should require Whisper, got %v", got)
	}

	cfg.Transcription.Backend = "api"
	got := names(PipelineRequirements(&cfg))
	if slices.Contains(got, "Whisper") {
		t.Fatalf("api backend should not require Whisper, got %v", got)
	}
	if !slices.Equal(got, []string{"yt-dlp", "FFmpeg", "FFprobe"}) {
		t.Fatalf("unexpected requirements %v", got)
	}
}

func TestCheckBinariesAddsInstallHint(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	results := CheckBinaries([]Requirement{{Name: "yt-dlp", Command: "yt-dlp", Install: "pip install yt-dlp"}})
	if results[0].Available {
		t.Fatal("expected yt-dlp to be missing from an empty PATH")
	}
	if !strings.Contains(results[0].Detail, "pip install yt-dlp") {
		t.Fatalf("expected install hint in detail, got %q", results[0].Detail)
	}
}
