// Package transcribe turns the downloaded WAV into a timestamped transcript.
//
// Two backends satisfy Transcriber: the openai-whisper CLI, driven through an
// injectable command runner, and an OpenAI-compatible HTTP endpoint that
// accepts a multipart upload and answers with verbose_json. Both produce the
// same normalized Transcript: segment times rounded to milliseconds, text
// trimmed, missing segment IDs filled from their position.
package transcribe
