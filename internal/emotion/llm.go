package emotion

import (
	"context"
	"fmt"
	"strings"

	"voice2sign/internal/services/llm"
)

const classificationPrompt = `You label the emotion of a line of spoken English.
Choose exactly one label from: sadness, joy, love, anger, fear, surprise, neutral.
Respond with JSON only: {"label": "<label>", "score": <confidence between 0 and 1>}`

// Completer is the part of the llm client the classifier needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMClassifier asks a chat model for the emotion label.
type LLMClassifier struct {
	client Completer
}

// NewLLMClassifier wraps an llm client.
func NewLLMClassifier(client Completer) *LLMClassifier {
	return &LLMClassifier{client: client}
}

// Classify prompts the model and validates the label it returns.
func (l *LLMClassifier) Classify(ctx context.Context, text string) (Score, error) {
	content, err := l.client.CompleteJSON(ctx, classificationPrompt, text)
	if err != nil {
		return Score{}, err
	}
	var parsed Score
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return Score{}, fmt.Errorf("emotion llm: parse payload: %w", err)
	}
	parsed.Label = strings.ToLower(strings.TrimSpace(parsed.Label))
	if !validLabel(parsed.Label) {
		return Score{}, fmt.Errorf("emotion llm: unexpected label %q", parsed.Label)
	}
	parsed.Score = min(max(parsed.Score, 0), 1)
	return parsed, nil
}
