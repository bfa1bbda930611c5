// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp video IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every stage reports
//     failures with the same shape, and UserMessage to surface them.
//
// Integrations with external models live in subpackages (whisper, llm).
package services
