// Package config loads, normalizes, and validates voice2sign configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and OPENROUTER_API_KEY. The Config type gathers every knob
// the pipeline, renderer and web UI need so output, cache and dataset
// directories are discovered in one pass.
package config
