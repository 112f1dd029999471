package youtube

import "errors"

var (
	// ErrNoVideoID reports a URL that carries no recognizable video id.
	ErrNoVideoID = errors.New("could not extract video ID from URL")
	// ErrNoPlaylistID reports a playlist URL without a list parameter value.
	ErrNoPlaylistID = errors.New("could not extract playlist ID from URL")
	// ErrNoTranscript reports a video without any caption track in the
	// requested languages.
	ErrNoTranscript = errors.New("no transcript available")
	// ErrNoTitle reports that a title source returned nothing usable.
	ErrNoTitle = errors.New("no title available")
	// ErrYtdlpNotInstalled reports a missing yt-dlp executable.
	ErrYtdlpNotInstalled = errors.New("yt-dlp is not installed or not in PATH")
)
