package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"subman/internal/config"
	"subman/internal/downloader"
	"subman/internal/library"
	"subman/internal/logging"
	"subman/internal/preflight"
	"subman/internal/youtube"
)

const noVideoIDMessage = "Could not extract video ID from URL"

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download [url]",
		Short: "Download transcripts for a YouTube video or playlist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			url := ""
			if len(args) > 0 {
				url = strings.TrimSpace(args[0])
			}
			if url == "" {
				url, err = newPrompter(cmd).line("Enter YouTube video or playlist URL: ")
				if err != nil {
					return err
				}
			}

			if !youtube.IsPlaylistURL(url) {
				if _, err := youtube.ExtractVideoID(url); errors.Is(err, youtube.ErrNoVideoID) {
					fmt.Fprintln(out, noVideoIDMessage)
					return nil
				}
			}
			if check := preflight.CheckYtdlp(commandCtx(cmd), cfg); !check.Passed {
				return fmt.Errorf("yt-dlp unavailable: %s", check.Detail)
			}

			logger := ctx.loggerFor(cmd)
			service, err := buildDownloader(cmd, ctx, cfg, logger)
			if err != nil {
				return err
			}

			result, err := service.Download(commandCtx(cmd), url)
			switch {
			case errors.Is(err, youtube.ErrNoVideoID):
				fmt.Fprintln(out, noVideoIDMessage)
				return nil
			case errors.Is(err, downloader.ErrEmptyPlaylist):
				fmt.Fprintln(out, "No videos found in playlist or playlist is private/unavailable")
				return nil
			case err != nil:
				return err
			}

			logger.Info("download summary",
				logging.String(logging.FieldRunID, result.RunID),
				logging.String("folder", result.FolderPath),
				logging.Int("downloaded", result.Downloaded),
				logging.Int("failed", result.Failed),
			)
			return nil
		},
	}
}

// buildDownloader wires the title and playlist sources the config enables:
// the Data API first when a key is set, then the watch page, then yt-dlp.
func buildDownloader(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, logger *slog.Logger) (*downloader.Service, error) {
	ytdlp := youtube.NewYtdlp(cfg.YouTube.YtdlpPath, cfg.YtdlpTimeoutDuration(), cfg.YouTube.Languages, logger)

	var titles youtube.TitleChain
	var playlists youtube.PlaylistChain
	if cfg.YouTube.APIKey != "" {
		api, err := youtube.NewDataAPI(commandCtx(cmd), cfg.YouTube.APIKey)
		if err != nil {
			return nil, err
		}
		titles = append(titles, api)
		playlists = append(playlists, api)
	}
	if cfg.YouTube.ScrapeTitles {
		titles = append(titles, youtube.NewPageScraper("", nil))
	}
	titles = append(titles, ytdlp)
	playlists = append(playlists, ytdlp)

	store := library.New(cfg.Paths.SubtitlesDir, logger)
	opts := []downloader.Option{
		downloader.WithLogger(logger),
		downloader.WithOutput(cmd.OutOrStdout()),
		downloader.WithRequestDelay(cfg.RequestDelay()),
		downloader.WithTitleRetries(cfg.YouTube.TitleRetries, cfg.TitleRetryDelay()),
	}
	if history := ctx.openCatalog(cmd); history != nil {
		opts = append(opts, downloader.WithCatalog(history))
	}
	return downloader.New(store, playlists, titles, ytdlp, opts...), nil
}
