// Package ffprobe provides a typed wrapper around ffprobe JSON output for the
// audio files produced by the download stage.
//
// Inspect runs ffprobe and Parse decodes its output; helper methods on Result
// pick out the first audio stream, its sample rate and channel count, and the
// container duration.
package ffprobe
