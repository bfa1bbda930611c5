// Package timeline maps gloss tokens to the sign assets shown for each
// transcript segment.
package timeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voice2sign/internal/emotion"
	"voice2sign/internal/fileutil"
	"voice2sign/internal/gloss"
	"voice2sign/internal/signs"
	"voice2sign/internal/transcribe"
)

// Item types.
const (
	TypePause       = "pause"
	TypeImage       = "image"
	TypeFingerspell = "fingerspell"
	TypeText        = "text"
)

// PauseSeconds is the hold shown for a pause marker.
const PauseSeconds = 0.4

const fingerspellAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Item is one visual step of a segment.
type Item struct {
	Type  string  `json:"type"`
	Dur   float64 `json:"dur,omitempty"`
	Path  string  `json:"path,omitempty"`
	Label string  `json:"label,omitempty"`
	Char  string  `json:"char,omitempty"`
}

// Segment is a transcript segment with its sign items.
type Segment struct {
	ID      int           `json:"id"`
	Start   float64       `json:"start"`
	End     float64       `json:"end"`
	Text    string        `json:"text"`
	Gloss   []string      `json:"gloss"`
	Emotion emotion.Score `json:"emotion,omitzero"`
	Items   []Item        `json:"items"`
}

// Timeline is the cached output of the timeline stage.
type Timeline struct {
	Timeline []Segment `json:"timeline"`
}

// TokenToAssets resolves one gloss token: a pause, an exact dataset sign,
// fingerspelled letters, or plain text when nothing else applies.
func TokenToAssets(token string, dict signs.Dictionary) []Item {
	token = strings.ToUpper(token)
	if token == gloss.Pause {
		return []Item{{Type: TypePause, Dur: PauseSeconds}}
	}
	if path, ok := dict[token]; ok {
		return []Item{{Type: TypeImage, Path: path, Label: token}}
	}
	var items []Item
	for _, ch := range token {
		if strings.ContainsRune(fingerspellAlphabet, ch) {
			items = append(items, Item{Type: TypeFingerspell, Label: "FINGERSPELL_" + string(ch), Char: string(ch)})
		}
	}
	if len(items) == 0 {
		items = append(items, Item{Type: TypeText, Label: token})
	}
	return items
}

// Build maps every segment's gloss onto sign items.
func Build(segments []emotion.Segment, dict signs.Dictionary) Timeline {
	out := Timeline{Timeline: make([]Segment, 0, len(segments))}
	for _, seg := range segments {
		items := make([]Item, 0, len(seg.Gloss))
		for _, tok := range seg.Gloss {
			items = append(items, TokenToAssets(tok, dict)...)
		}
		out.Timeline = append(out.Timeline, Segment{
			ID:      seg.ID,
			Start:   seg.Start,
			End:     seg.End,
			Text:    seg.Text,
			Gloss:   seg.Gloss,
			Emotion: seg.Emotion,
			Items:   items,
		})
	}
	return out
}

// Path returns where Save writes the timeline for stem.
func Path(outputDir, stem string) string {
	return filepath.Join(outputDir, stem+"_sign_timeline.json")
}

// Save writes <stem>_sign_timeline.json into outputDir and returns its path.
func Save(t Timeline, stem, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("save timeline: %w", err)
	}
	path := Path(outputDir, stem)
	if err := fileutil.WriteJSON(path, t); err != nil {
		return "", fmt.Errorf("save timeline: %w", err)
	}
	return path, nil
}

// Stats are the headline numbers shown for an analysis.
type Stats struct {
	Segments  int     `json:"segments"`
	SignItems int     `json:"sign_items"`
	Words     int     `json:"words"`
	Duration  float64 `json:"duration"`
}

// Summary counts segments, sign items and transcript words, and takes the
// duration from the end of the last segment.
func Summary(t Timeline, tr transcribe.Transcript) Stats {
	stats := Stats{Segments: len(t.Timeline), Words: len(strings.Fields(tr.Text))}
	for _, seg := range t.Timeline {
		stats.SignItems += len(seg.Items)
	}
	if n := len(t.Timeline); n > 0 {
		stats.Duration = t.Timeline[n-1].End
	}
	return stats
}
