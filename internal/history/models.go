package history

import (
	"strings"
	"time"
)

// Status values for an analysis row.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry is one analysis run.
type Entry struct {
	ID              int64     `json:"id"`
	VideoID         string    `json:"video_id"`
	URL             string    `json:"url"`
	Language        string    `json:"language,omitempty"`
	Segments        int       `json:"segments"`
	SignItems       int       `json:"sign_items"`
	Words           int       `json:"words"`
	DurationSeconds float64   `json:"duration_seconds"`
	StagesFromCache []string  `json:"stages_from_cache,omitempty"`
	Emotion         bool      `json:"emotion"`
	Model           string    `json:"model,omitempty"`
	RequestID       string    `json:"request_id,omitempty"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Failed reports whether the run ended with an error.
func (e Entry) Failed() bool {
	return e.Status == StatusFailed
}

func joinStages(stages []string) string {
	return strings.Join(stages, ",")
}

func splitStages(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ",")
}
