// Package stagecache memoizes pipeline stage outputs as JSON files keyed by
// YouTube video ID and stage name.
//
// Each stage writes video_<id>_stage_<stage>.json; a completed run also writes
// the video_<id>.json summary. Files are replaced atomically, a hit returns the
// stored document untouched, and nothing is ever invalidated automatically:
// callers clear one video or the whole directory explicitly.
package stagecache
