package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Emotions        []Score `json:"emotions"`
	DominantEmotion string  `json:"dominant_emotion"`
}

// HTTPClassifier calls an emotion service exposing POST /detect.
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClassifier creates a classifier for the service at baseURL.
func NewHTTPClassifier(baseURL string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Classify posts text to /detect and returns the top-scoring emotion.
func (h *HTTPClassifier) Classify(ctx context.Context, text string) (Score, error) {
	if h.baseURL == "" {
		return Score{}, errors.New("emotion service url not configured")
	}
	body, _ := json.Marshal(detectRequest{Text: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return Score{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Score{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Score{}, fmt.Errorf("emotion %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Score{}, fmt.Errorf("emotion decode: %w", err)
	}
	best := top(out.Emotions)
	best.Label = strings.ToLower(best.Label)
	return best, nil
}
