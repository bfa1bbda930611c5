package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"voice2sign/internal/emotion"
	"voice2sign/internal/history"
	"voice2sign/internal/services"
	"voice2sign/internal/stagecache"
	"voice2sign/internal/testsupport"
	"voice2sign/internal/transcribe"
	"voice2sign/internal/youtube"
)

const testURL = "https://www.youtube.com/watch?v=abc123XYZ"

type fakeDownloader struct {
	dir   string
	calls int
	err   error
}

func (f *fakeDownloader) Download(_ context.Context, _, videoID string) (youtube.Record, error) {
	f.calls++
	if f.err != nil {
		return youtube.Record{}, f.err
	}
	return youtube.Record{WAVPath: filepath.Join(f.dir, videoID+".wav"), Duration: 4.5, Format: "wav", SampleRate: 16000, Channels: 1}, nil
}

type fakeTranscriber struct {
	model string
	calls *int
}

func (f fakeTranscriber) Model() string { return f.model }

func (f fakeTranscriber) Transcribe(_ context.Context, wav string) (transcribe.Transcript, error) {
	*f.calls++
	return transcribe.Transcript{
		Audio:    wav,
		Language: "en",
		Text:     "Cats eat fish. Zebra",
		Model:    f.model,
		Segments: []transcribe.Segment{
			{ID: 0, Start: 0, End: 2.5, Text: "Cats eat fish."},
			{ID: 1, Start: 2.5, End: 3, Text: "  "},
			{ID: 2, Start: 3, End: 4.25, Text: "Zebra"},
		},
	}, nil
}

type fakeClassifier struct{ calls int }

func (f *fakeClassifier) Classify(context.Context, string) (emotion.Score, error) {
	f.calls++
	return emotion.Score{Label: "joy", Score: 0.9}, nil
}

type harness struct {
	runner      *Runner
	cache       *stagecache.Cache
	downloader  *fakeDownloader
	transcribes int
	models      []string
	classifier  *fakeClassifier
	history     *history.Store
	outputDir   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	cache := testsupport.MustOpenCache(t, cfg)
	store := testsupport.MustOpenHistory(t, cfg)

	h := &harness{
		cache:      cache,
		downloader: &fakeDownloader{dir: cfg.Paths.OutputDir},
		classifier: &fakeClassifier{},
		history:    store,
		outputDir:  cfg.Paths.OutputDir,
	}
	h.runner = New(Options{
		OutputDir:    h.outputDir,
		DatasetDir:   filepath.Join(base, "missing-dataset"),
		DefaultModel: "base",
		KeepNegation: true,
	}, Deps{
		Cache:      cache,
		Downloader: h.downloader,
		Transcriber: func(model string) (transcribe.Transcriber, error) {
			h.models = append(h.models, model)
			return fakeTranscriber{model: model, calls: &h.transcribes}, nil
		},
		Classifier: func() (emotion.Classifier, error) { return h.classifier, nil },
		History:    store,
	}, nil)
	h.runner.newRequestID = func() string { return "req-1" }
	return h
}

func TestRunComputesThenReusesCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.runner.Run(ctx, Request{URL: testURL})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.VideoID != "abc123XYZ" || len(first.StagesFromCache) != 0 {
		t.Fatalf("unexpected first result: id=%q cached=%v", first.VideoID, first.StagesFromCache)
	}
	if got := len(first.Timeline.Timeline); got != 2 {
		t.Fatalf("expected blank segment to be skipped, got %d timeline segments", got)
	}
	if first.Summary.Stats.Segments != 2 || first.Summary.Stats.Duration != 4.25 || first.Summary.Stats.Words != 4 {
		t.Fatalf("unexpected stats %+v", first.Summary.Stats)
	}
	if !slices.Equal(h.models, []string{"base"}) {
		t.Fatalf("expected default model, got %v", h.models)
	}
	for _, name := range []string{"abc123XYZ_transcript.json", "abc123XYZ_transcript.txt", "abc123XYZ_gloss.json", "abc123XYZ_sign_timeline.json"} {
		if _, err := os.Stat(filepath.Join(h.outputDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if !h.cache.Has("abc123XYZ") {
		t.Fatal("expected summary to be cached")
	}

	second, err := h.runner.Run(ctx, Request{URL: "https://youtu.be/abc123XYZ", Model: "tiny"})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	want := []string{"download", "transcribe", "gloss", "timeline"}
	if !slices.Equal(second.StagesFromCache, want) {
		t.Fatalf("stages from cache = %v, want %v", second.StagesFromCache, want)
	}
	if h.downloader.calls != 1 || h.transcribes != 1 {
		t.Fatalf("expected cached stages to skip work, downloads=%d transcribes=%d", h.downloader.calls, h.transcribes)
	}

	rows, err := h.history.ForVideo(ctx, "abc123XYZ")
	if err != nil {
		t.Fatalf("ForVideo: %v", err)
	}
	if len(rows) != 2 || rows[0].Status != history.StatusCompleted || rows[0].RequestID != "req-1" {
		t.Fatalf("unexpected history rows %+v", rows)
	}
}

func TestRunWithEmotion(t *testing.T) {
	h := newHarness(t)
	result, err := h.runner.Run(context.Background(), Request{URL: testURL, EmotionEnabled: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.classifier.calls != 2 {
		t.Fatalf("expected one classification per non-empty segment, got %d", h.classifier.calls)
	}
	if got := result.Timeline.Timeline[0].Emotion.Label; got != "joy" {
		t.Fatalf("expected emotion on timeline, got %q", got)
	}
	if !h.cache.HasStage("abc123XYZ", stagecache.StageEmotion) {
		t.Fatal("expected emotion stage to be cached")
	}
	if _, err := os.Stat(filepath.Join(h.outputDir, emotion.OutputFile)); err != nil {
		t.Fatalf("expected emotion output: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(h.outputDir, "abc123XYZ_gloss.json"))
	if err != nil {
		t.Fatalf("read gloss output: %v", err)
	}
	var saved emotion.Result
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("decode gloss output: %v", err)
	}
	if len(saved.Segments) != 2 || saved.Segments[0].Emotion.Label != "joy" {
		t.Fatalf("expected emotion labels in gloss output, got %+v", saved.Segments)
	}
}

func TestRunWithoutEmotionOmitsEmotionKey(t *testing.T) {
	h := newHarness(t)
	if _, err := h.runner.Run(context.Background(), Request{URL: testURL}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(h.outputDir, "abc123XYZ_gloss.json"))
	if err != nil {
		t.Fatalf("read gloss output: %v", err)
	}
	if strings.Contains(string(data), `"emotion"`) {
		t.Fatalf("gloss output should not carry emotion when disabled: %s", data)
	}
}

func TestRunWaitsForVideoLock(t *testing.T) {
	h := newHarness(t)
	held := flock.New(filepath.Join(h.cache.Dir(), "video_abc123XYZ.lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: locked=%v err=%v", locked, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if _, err := h.runner.Run(ctx, Request{URL: testURL}); !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout while the video is locked, got %v", err)
	}
	if h.downloader.calls != 0 {
		t.Fatal("download must not start without the video lock")
	}

	if err := held.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := h.runner.Run(context.Background(), Request{URL: testURL}); err != nil {
		t.Fatalf("Run after unlock: %v", err)
	}
	if h.downloader.calls != 1 {
		t.Fatalf("expected one download after unlock, got %d", h.downloader.calls)
	}

	// The lock is released when Run returns.
	again := flock.New(filepath.Join(h.cache.Dir(), "video_abc123XYZ.lock"))
	if ok, err := again.TryLock(); err != nil || !ok {
		t.Fatalf("expected lock to be free after Run: ok=%v err=%v", ok, err)
	}
	_ = again.Unlock()
}

func TestRunRejectsInvalidURL(t *testing.T) {
	h := newHarness(t)
	_, err := h.runner.Run(context.Background(), Request{URL: "https://vimeo.com/1"})
	if !errors.Is(err, services.ErrValidation) || services.UserMessage(err) == "" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.downloader.calls != 0 {
		t.Fatal("downloader should not run for an invalid url")
	}
}

func TestRunRecordsFailure(t *testing.T) {
	h := newHarness(t)
	h.downloader.err = services.Wrap(services.ErrExternalTool, "download", "yt-dlp", "audio download failed", errors.New("HTTP Error 403"))

	if _, err := h.runner.Run(context.Background(), Request{URL: testURL}); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	rows, err := h.history.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 1 || !rows[0].Failed() || rows[0].ErrorMessage == "" {
		t.Fatalf("expected one failed row, got %+v", rows)
	}
	if h.cache.HasStage("abc123XYZ", stagecache.StageDownload) {
		t.Fatal("failed stage must not be cached")
	}
}

func TestLoad(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.runner.Load(ctx, "abc123XYZ"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found before any run, got %v", err)
	}
	if _, err := h.runner.Run(ctx, Request{URL: testURL}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	loaded, err := h.runner.Load(ctx, "abc123XYZ")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Transcript.Language != "en" || len(loaded.Gloss.Segments) != 2 || loaded.Summary.Stats.Segments != 2 {
		t.Fatalf("unexpected loaded result %+v", loaded.Summary)
	}
	if loaded.StagesFromCache == nil || len(loaded.StagesFromCache) != 0 {
		t.Fatalf("fresh run should load with no cached stages, got %v", loaded.StagesFromCache)
	}

	if _, err := h.runner.Run(ctx, Request{URL: testURL}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	reloaded, err := h.runner.Load(ctx, "abc123XYZ")
	if err != nil {
		t.Fatalf("Load after cached run: %v", err)
	}
	if !slices.Equal(reloaded.StagesFromCache, []string{"download", "transcribe", "gloss", "timeline"}) {
		t.Fatalf("unexpected cached stages %v", reloaded.StagesFromCache)
	}
	if _, err := h.runner.Load(ctx, "../etc"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
