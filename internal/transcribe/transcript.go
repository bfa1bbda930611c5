package transcribe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"voice2sign/internal/fileutil"
	"voice2sign/internal/language"
)

// Segment is one timed span of speech.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the cached output of the transcribe stage.
type Transcript struct {
	Audio    string    `json:"audio"`
	Language string    `json:"language"`
	Text     string    `json:"text"`
	Model    string    `json:"model"`
	Segments []Segment `json:"segments"`
}

// rawSegment is the segment shape shared by whisper's JSON writer and the
// verbose_json API response. Times stay decimal until rounding.
type rawSegment struct {
	ID    *int            `json:"id"`
	Start decimal.Decimal `json:"start"`
	End   decimal.Decimal `json:"end"`
	Text  string          `json:"text"`
}

type rawTranscript struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Segments []rawSegment `json:"segments"`
}

func roundMillis(d decimal.Decimal) float64 {
	f, _ := d.Round(3).Float64()
	return f
}

// normalize converts a backend payload into a Transcript.
func normalize(raw rawTranscript, audio, model string) Transcript {
	t := Transcript{
		Audio:    audio,
		Language: normalizeLanguage(raw.Language),
		Text:     strings.TrimSpace(raw.Text),
		Model:    model,
		Segments: make([]Segment, 0, len(raw.Segments)),
	}
	for i, seg := range raw.Segments {
		id := i
		if seg.ID != nil {
			id = *seg.ID
		}
		t.Segments = append(t.Segments, Segment{
			ID:    id,
			Start: roundMillis(seg.Start),
			End:   roundMillis(seg.End),
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	if t.Text == "" {
		parts := make([]string, 0, len(t.Segments))
		for _, seg := range t.Segments {
			if seg.Text != "" {
				parts = append(parts, seg.Text)
			}
		}
		t.Text = strings.Join(parts, " ")
	}
	return t
}

func normalizeLanguage(value string) string {
	if iso := language.ToISO2(value); iso != "" {
		return iso
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// JSONPath returns where Save writes the transcript JSON for stem.
func JSONPath(outputDir, stem string) string {
	return filepath.Join(outputDir, stem+"_transcript.json")
}

// TextPath returns where Save writes the plain-text transcript for stem.
func TextPath(outputDir, stem string) string {
	return filepath.Join(outputDir, stem+"_transcript.txt")
}

// Save writes <stem>_transcript.json and <stem>_transcript.txt into outputDir.
func Save(t Transcript, stem, outputDir string) error {
	if strings.TrimSpace(stem) == "" {
		return fmt.Errorf("save transcript: stem required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("save transcript: ensure output dir: %w", err)
	}
	if err := fileutil.WriteJSON(JSONPath(outputDir, stem), t); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	if err := fileutil.WriteFileAtomic(TextPath(outputDir, stem), []byte(t.Text+"\n")); err != nil {
		return fmt.Errorf("save transcript text: %w", err)
	}
	return nil
}
