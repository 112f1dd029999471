package youtube

import (
	"context"
	"errors"
	"strings"
)

// Playlist is a resolved playlist with videos in playlist order.
type Playlist struct {
	ID     string
	Title  string
	Videos []PlaylistVideo
}

// PlaylistVideo is one playlist entry. Order is the 1-based position.
type PlaylistVideo struct {
	ID    string
	Order int
	Title string
}

// PlaylistResolver lists the videos of a playlist.
type PlaylistResolver interface {
	ResolvePlaylist(ctx context.Context, playlistID string) (Playlist, error)
}

// TitleSource looks up a video title.
type TitleSource interface {
	VideoTitle(ctx context.Context, videoID string) (string, error)
}

// TranscriptSource fetches a video transcript as plain text, one caption
// line per text line.
type TranscriptSource interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

// TitleChain tries each source in order and returns the first non-empty title.
type TitleChain []TitleSource

// VideoTitle implements TitleSource.
func (c TitleChain) VideoTitle(ctx context.Context, videoID string) (string, error) {
	var errs []error
	for _, source := range c {
		if source == nil {
			continue
		}
		title, err := source.VideoTitle(ctx, videoID)
		if err == nil && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err == nil {
			err = ErrNoTitle
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrNoTitle
	}
	return "", errors.Join(errs...)
}

// PlaylistChain tries each resolver in order and returns the first playlist
// that has a title and at least one video.
type PlaylistChain []PlaylistResolver

// ResolvePlaylist implements PlaylistResolver.
func (c PlaylistChain) ResolvePlaylist(ctx context.Context, playlistID string) (Playlist, error) {
	var errs []error
	for _, resolver := range c {
		if resolver == nil {
			continue
		}
		playlist, err := resolver.ResolvePlaylist(ctx, playlistID)
		if err == nil && playlist.Title != "" && len(playlist.Videos) > 0 {
			return playlist, nil
		}
		if ctx.Err() != nil {
			return Playlist{}, ctx.Err()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return Playlist{ID: playlistID}, nil
	}
	return Playlist{ID: playlistID}, errors.Join(errs...)
}
