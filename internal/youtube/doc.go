// Package youtube extracts video IDs from YouTube URLs and turns a video into
// a mono WAV for transcription.
//
// Downloads go through yt-dlp (via go-ytdlp) into the scratch directory and are
// converted with ffmpeg; the resulting Record carries the ffprobe-reported
// duration and format plus a blake3 digest of the WAV.
package youtube
