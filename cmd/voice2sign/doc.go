// Command voice2sign turns the speech of a YouTube video into sign language
// gloss, a sign timeline and fingerspelling GIFs.
//
// "voice2sign serve" starts the web UI; "voice2sign analyze" runs the same
// pipeline from the terminal. Every stage result is cached per video, so a
// second run of the same URL is served from disk.
package main
