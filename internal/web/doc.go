// Package web serves the voice2sign browser UI and its small JSON API.
//
// Pages are rendered with html/template from embedded files. Analyses run
// synchronously inside the POST /analyze handler; results pages, downloads
// and the JSON API read back from the stage cache, so a result survives
// server restarts. GIF and sign image routes render on demand through
// internal/render and reuse its on-disk GIF cache.
package web
