package services_test

import (
	"errors"
	"strings"
	"testing"

	"voice2sign/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "download", "ffmpeg", "convert failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"download", "ffmpeg", "convert failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestCategoryAndUserMessage(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "input", "extract id", "invalid YouTube URL", nil)
	if got := services.Category(err); got != "validation" {
		t.Fatalf("unexpected category %q", got)
	}
	if got := services.UserMessage(err); got != "input: extract id: invalid YouTube URL" {
		t.Fatalf("unexpected user message %q", got)
	}
	if got := services.Category(errors.New("plain")); got != "transient" {
		t.Fatalf("unexpected category for plain error %q", got)
	}
	if services.Category(nil) != "" || services.UserMessage(nil) != "" {
		t.Fatal("expected empty values for nil error")
	}
}
