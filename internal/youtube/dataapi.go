package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

const playlistPageSize = 50

// DataAPI resolves playlists and titles through the YouTube Data API v3.
type DataAPI struct {
	service *yt.Service
}

// NewDataAPI creates a Data API client authenticated with an API key. Extra
// client options are appended after the key.
func NewDataAPI(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DataAPI, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube data api: api key required")
	}
	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := yt.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &DataAPI{service: service}, nil
}

// ResolvePlaylist implements PlaylistResolver.
func (a *DataAPI) ResolvePlaylist(ctx context.Context, playlistID string) (Playlist, error) {
	playlist := Playlist{ID: playlistID}

	meta, err := a.service.Playlists.List([]string{"snippet"}).Id(playlistID).Context(ctx).Do()
	if err != nil {
		return playlist, fmt.Errorf("youtube data api: playlists.list: %w", err)
	}
	if len(meta.Items) == 0 || meta.Items[0].Snippet == nil {
		return playlist, fmt.Errorf("youtube data api: playlist %s not found", playlistID)
	}
	playlist.Title = strings.TrimSpace(meta.Items[0].Snippet.Title)

	// position counts every item, including ones skipped below.
	position := 0
	pageToken := ""
	for {
		call := a.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(playlistPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return playlist, fmt.Errorf("youtube data api: playlistItems.list: %w", err)
		}
		for _, item := range resp.Items {
			position++
			if item.ContentDetails == nil || strings.TrimSpace(item.ContentDetails.VideoId) == "" {
				continue
			}
			video := PlaylistVideo{
				ID:    item.ContentDetails.VideoId,
				Order: position,
			}
			if item.Snippet != nil {
				video.Title = strings.TrimSpace(item.Snippet.Title)
			}
			playlist.Videos = append(playlist.Videos, video)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return playlist, nil
}

// VideoTitle implements TitleSource.
func (a *DataAPI) VideoTitle(ctx context.Context, videoID string) (string, error) {
	resp, err := a.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("youtube data api: videos.list: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", ErrNoTitle
	}
	title := strings.TrimSpace(resp.Items[0].Snippet.Title)
	if title == "" {
		return "", ErrNoTitle
	}
	return title, nil
}

// Ping verifies the API key with the cheapest read the API offers.
func (a *DataAPI) Ping(ctx context.Context) error {
	if _, err := a.service.I18nLanguages.List([]string{"snippet"}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("youtube data api: i18nLanguages.list: %w", err)
	}
	return nil
}
