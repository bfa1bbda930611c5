// Package language normalizes the language reported by transcription
// backends. Whisper returns ISO 639-1 codes while OpenAI-compatible endpoints
// may return full English names; both become ISO 639-1.
package language
