package youtube

import (
	"net/url"
	"strings"
)

const watchBaseURL = "https://www.youtube.com/watch?v="

// IsPlaylistURL reports whether the URL names a playlist. Any URL carrying a
// list parameter is treated as a playlist, including watch URLs opened from
// inside one.
func IsPlaylistURL(raw string) bool {
	return strings.Contains(raw, "list=")
}

// ExtractVideoID returns the video id from youtu.be, watch, shorts, embed, or
// live URLs.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoVideoID
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", ErrNoVideoID
	}

	if strings.Contains(parsed.Host, "youtu.be") {
		if id := lastSegment(parsed.Path); id != "" {
			return id, nil
		}
		return "", ErrNoVideoID
	}

	if id := strings.TrimSpace(parsed.Query().Get("v")); id != "" {
		return id, nil
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		switch segments[i] {
		case "shorts", "embed", "live":
			if id := strings.TrimSpace(segments[i+1]); id != "" {
				return id, nil
			}
		}
	}
	return "", ErrNoVideoID
}

// ExtractPlaylistID returns the list parameter of a playlist URL.
func ExtractPlaylistID(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrNoPlaylistID
	}
	id := strings.TrimSpace(parsed.Query().Get("list"))
	if id == "" {
		return "", ErrNoPlaylistID
	}
	return id, nil
}

// WatchURL returns the canonical watch page for a video id.
func WatchURL(videoID string) string {
	return watchBaseURL + url.QueryEscape(videoID)
}

// PlaylistURL returns the canonical playlist page for a playlist id.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + url.QueryEscape(playlistID)
}

func lastSegment(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
