// Package pipeline runs the analysis stages for one YouTube video in order:
// download, transcribe, gloss, emotion (optional) and timeline.
//
// Every stage is memoized in the stage cache. A cached stage is returned as
// stored and reported in Result.StagesFromCache; a missing one is computed
// and written back. Runs for the same video are serialized with a file lock
// in the cache directory so concurrent UI requests never interleave writes.
//
// After a run the gloss and timeline JSON are written next to the WAV, a
// whole-video summary is cached and a history row is recorded. Failed runs
// are recorded too.
package pipeline
