// Package llm is a small chat-completions client for OpenRouter and other
// OpenAI-compatible endpoints.
//
// CompleteJSON requests JSON-mode output and returns the raw content.
// Requests are retried on HTTP 408, 429 and 5xx, on network timeouts and on
// empty replies, with exponential backoff (1s doubling to 10s, five attempts
// by default). A Retry-After header overrides the computed delay. Context
// cancellation stops retrying immediately.
//
// DecodeJSON unwraps the code fences and surrounding prose that models
// sometimes add around the requested object.
package llm
