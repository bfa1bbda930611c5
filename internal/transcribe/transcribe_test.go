package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"voice2sign/internal/services"
)

func TestNormalizeRoundsAndDefaultsIDs(t *testing.T) {
	var raw rawTranscript
	payload := `{"text":"  hello there. general  ","language":"english","segments":[
		{"start":0.12345,"end":"1.9996","text":"  hello there. "},
		{"id":7,"start":2.0004,"end":3.5,"text":"general"}
	]}`
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := normalize(raw, "/out/vid.wav", "base")

	if got.Audio != "/out/vid.wav" || got.Model != "base" || got.Language != "en" {
		t.Fatalf("unexpected header fields: %+v", got)
	}
	if got.Text != "hello there. general" {
		t.Fatalf("expected trimmed text, got %q", got.Text)
	}
	want := []Segment{
		{ID: 0, Start: 0.123, End: 2.0, Text: "hello there."},
		{ID: 7, Start: 2.0, End: 3.5, Text: "general"},
	}
	if !slices.Equal(got.Segments, want) {
		t.Fatalf("segments = %+v, want %+v", got.Segments, want)
	}
}

func TestNormalizeJoinsSegmentTextWhenTextMissing(t *testing.T) {
	raw := rawTranscript{Segments: []rawSegment{{Text: " a "}, {Text: ""}, {Text: "b"}}}
	got := normalize(raw, "x.wav", "tiny")
	if got.Text != "a b" {
		t.Fatalf("expected joined text, got %q", got.Text)
	}
	if got.Segments[2].ID != 2 {
		t.Fatalf("expected index id, got %d", got.Segments[2].ID)
	}
}

func TestSaveWritesJSONAndText(t *testing.T) {
	dir := t.TempDir()
	tr := Transcript{Audio: "a.wav", Language: "en", Text: "hi", Model: "base", Segments: []Segment{}}
	if err := Save(tr, "vid", dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	text, err := os.ReadFile(TextPath(dir, "vid"))
	if err != nil || string(text) != "hi\n" {
		t.Fatalf("unexpected text file %q err=%v", text, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "vid_transcript.json"))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded Transcript
	if err := json.Unmarshal(data, &decoded); err != nil || decoded.Text != "hi" {
		t.Fatalf("decode saved transcript: %+v %v", decoded, err)
	}
	if err := Save(tr, " ", dir); err == nil {
		t.Fatal("expected error for empty stem")
	}
}

func TestWhisperTranscribe(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "vid.wav")
	work := filepath.Join(dir, "work")

	w := NewWhisper(Options{Model: "small", Language: "English", WorkDir: work}, nil)
	var gotName string
	var gotArgs []string
	w.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		out := `{"text":" Hi. ","language":"en","segments":[{"id":0,"start":0,"end":1.23456,"text":" Hi. "}]}`
		return os.WriteFile(filepath.Join(work, "vid.json"), []byte(out), 0o644)
	})

	tr, err := w.Transcribe(context.Background(), wav)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotName != "whisper" {
		t.Fatalf("expected whisper command, got %q", gotName)
	}
	wantArgs := []string{wav, "--model", "small", "--output_format", "json", "--output_dir", work,
		"--verbose", "False", "--fp16", "False", "--language", "en"}
	if !slices.Equal(gotArgs, wantArgs) {
		t.Fatalf("args = %v, want %v", gotArgs, wantArgs)
	}
	if tr.Model != "small" || tr.Text != "Hi." || tr.Segments[0].End != 1.235 {
		t.Fatalf("unexpected transcript %+v", tr)
	}
}

func TestWhisperErrors(t *testing.T) {
	dir := t.TempDir()
	w := NewWhisper(Options{WorkDir: dir}, nil)
	if _, err := w.Transcribe(context.Background(), ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	w.WithCommandRunner(func(context.Context, string, ...string) error { return errors.New("exit status 1") })
	if _, err := w.Transcribe(context.Background(), filepath.Join(dir, "a.wav")); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	w.WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	if _, err := w.Transcribe(context.Background(), filepath.Join(dir, "a.wav")); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected error for missing output, got %v", err)
	}
}

func TestAPITranscribe(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "vid.wav")
	if err := os.WriteFile(wav, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("response_format") != "verbose_json" || r.FormValue("language") != "fr" {
			t.Errorf("unexpected form values %v", r.MultipartForm.Value)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			if header.Filename != "vid.wav" || string(data) != "RIFF....WAVE" {
				t.Errorf("unexpected upload %q %q", header.Filename, data)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"task":"transcribe","language":"french","duration":2.5,"text":"Bonjour","segments":[{"id":0,"start":0.0,"end":2.5,"text":" Bonjour"}]}`)
	}))
	defer server.Close()

	tr, err := New(Options{Backend: "api", APIURL: server.URL, APIKey: "sk-test", Language: "fr"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := tr.Transcribe(context.Background(), wav)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got.Language != "fr" || got.Model != "whisper-1" || got.Segments[0].Text != "Bonjour" {
		t.Fatalf("unexpected transcript %+v", got)
	}
}

func TestAPIStatusMapping(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "vid.wav")
	if err := os.WriteFile(wav, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		status int
		marker error
	}{
		{http.StatusUnauthorized, services.ErrConfiguration},
		{http.StatusTooManyRequests, services.ErrTransient},
		{http.StatusBadGateway, services.ErrTransient},
		{http.StatusBadRequest, services.ErrExternalTool},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", tt.status)
		}))
		api := NewAPI(Options{APIURL: server.URL}, server.Client(), nil)
		_, err := api.Transcribe(context.Background(), wav)
		server.Close()
		if !errors.Is(err, tt.marker) || !strings.Contains(err.Error(), "nope") {
			t.Fatalf("status %d: expected %v, got %v", tt.status, tt.marker, err)
		}
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	if _, err := New(Options{Backend: "vosk"}, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := New(Options{Backend: "api"}, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing url, got %v", err)
	}
	tr, err := New(Options{}, nil)
	if err != nil || tr.Model() != DefaultModel {
		t.Fatalf("expected whisper default, got %v %v", tr, err)
	}
}
