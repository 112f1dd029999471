// Package youtube resolves YouTube URLs into video identifiers, titles, and
// plain-text transcripts.
//
// Three backends are combined behind small interfaces: the yt-dlp executable
// (playlists, titles, and json3 caption tracks), the YouTube Data API v3 when
// an API key is configured, and a watch-page scraper for titles. Titles are
// best effort; callers fall back to a placeholder when every source fails.
package youtube
