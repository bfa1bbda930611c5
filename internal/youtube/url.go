package youtube

import (
	"net/url"
	"regexp"
)

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)

// ExtractVideoID returns the video identifier from watch, youtu.be and embed
// URLs, or "" when the URL matches none of them.
func ExtractVideoID(rawURL string) string {
	match := videoIDPattern.FindStringSubmatch(rawURL)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// EmbedURL returns the player URL used by the results page, with captions on.
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + url.PathEscape(videoID) + "?start=0&cc_load_policy=1"
}

// WatchURL returns the canonical watch URL for a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}
