package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"subman/internal/catalog"
	"subman/internal/library"
	"subman/internal/llm"
	"subman/internal/logging"
	"subman/internal/textutil"
	"subman/internal/youtube"
)

// ErrEmptyPlaylist reports a playlist that resolved to no title or no videos.
var ErrEmptyPlaylist = errors.New("no videos found in playlist or playlist is private/unavailable")

const (
	defaultTitleRetries    = 3
	defaultTitleRetryDelay = time.Second
	defaultRequestDelay    = 500 * time.Millisecond
)

// Catalog records download history. A nil Catalog disables recording.
type Catalog interface {
	RecordSource(ctx context.Context, src catalog.Source) error
	RecordTranscript(ctx context.Context, tr catalog.Transcript) error
}

// Result summarizes one download run.
type Result struct {
	RunID      string
	Title      string
	Type       library.SourceType
	FolderHash string
	FolderPath string
	Total      int
	Downloaded int
	Failed     int
}

// Service downloads transcripts into a library.
type Service struct {
	store       *library.Store
	playlists   youtube.PlaylistResolver
	titles      youtube.TitleSource
	transcripts youtube.TranscriptSource
	catalog     Catalog
	logger      *slog.Logger
	out         io.Writer

	requestDelay    time.Duration
	titleRetries    int
	titleRetryDelay time.Duration
	sleeper         llm.Sleeper
}

// Option customizes the service.
type Option func(*Service)

// WithCatalog enables history recording.
func WithCatalog(c Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logging.NewComponentLogger(logger, "downloader") }
}

// WithOutput sets where progress lines for the user are printed.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.out = w
		}
	}
}

// WithRequestDelay sets the minimum spacing between per-video requests. Zero
// disables throttling.
func WithRequestDelay(delay time.Duration) Option {
	return func(s *Service) { s.requestDelay = delay }
}

// WithTitleRetries sets how many times a title lookup is attempted and the
// pause between attempts.
func WithTitleRetries(attempts int, delay time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.titleRetries = attempts
		}
		if delay >= 0 {
			s.titleRetryDelay = delay
		}
	}
}

// WithSleeper overrides how retry pauses are performed (useful for tests).
func WithSleeper(sleeper llm.Sleeper) Option {
	return func(s *Service) {
		if sleeper != nil {
			s.sleeper = sleeper
		}
	}
}

// New constructs a download service.
func New(store *library.Store, playlists youtube.PlaylistResolver, titles youtube.TitleSource, transcripts youtube.TranscriptSource, opts ...Option) *Service {
	s := &Service{
		store:           store,
		playlists:       playlists,
		titles:          titles,
		transcripts:     transcripts,
		logger:          logging.NewComponentLogger(nil, "downloader"),
		out:             io.Discard,
		requestDelay:    defaultRequestDelay,
		titleRetries:    defaultTitleRetries,
		titleRetryDelay: defaultTitleRetryDelay,
		sleeper:         llm.SleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Download fetches every transcript behind the URL. The returned error is
// ErrEmptyPlaylist or youtube.ErrNoVideoID when nothing could be written;
// per-video failures only show up in the Result counts.
func (s *Service) Download(ctx context.Context, rawURL string) (Result, error) {
	runID, ok := logging.RunIDFromContext(ctx)
	if !ok {
		runID = catalog.NewRunID()
		ctx = logging.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("download started", logging.String("url", rawURL))

	rawURL = strings.TrimSpace(rawURL)
	if youtube.IsPlaylistURL(rawURL) {
		return s.downloadPlaylist(ctx, logger, runID, rawURL)
	}
	return s.downloadVideo(ctx, logger, runID, rawURL)
}

func (s *Service) downloadPlaylist(ctx context.Context, logger *slog.Logger, runID, rawURL string) (Result, error) {
	result := Result{RunID: runID, Type: library.SourcePlaylist}
	s.printf("Processing playlist...\n")

	playlistID, err := youtube.ExtractPlaylistID(rawURL)
	if err != nil {
		return result, ErrEmptyPlaylist
	}
	playlist, err := s.playlists.ResolvePlaylist(ctx, playlistID)
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		s.printf("Error getting playlist info: %v\n", err)
		logging.WarnWithContext(logger, "playlist resolution failed", "playlist_unresolved",
			logging.String("playlist_id", playlistID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "nothing downloaded"),
		)
	}
	if playlist.Title == "" || len(playlist.Videos) == 0 {
		return result, ErrEmptyPlaylist
	}

	result.Title = playlist.Title
	result.FolderHash = textutil.FolderHash(playlist.Title)
	result.FolderPath = s.store.FolderPath(result.FolderHash)
	result.Total = len(playlist.Videos)
	logger = logger.With(logging.String(logging.FieldSourceHash, result.FolderHash))

	if err := s.recordSource(ctx, logger, runID, result, rawURL); err != nil {
		return result, err
	}
	s.printf("Found %d videos in playlist: %s\n", len(playlist.Videos), playlist.Title)

	limiter := s.newLimiter()
	videos := library.VideoMap{}
	var loopErr error
	for _, video := range playlist.Videos {
		if err := waitLimiter(ctx, limiter); err != nil {
			loopErr = err
			break
		}
		title := s.videoTitle(ctx, logger, video.ID)
		videos[video.Order] = library.VideoEntry{ID: video.ID, Title: title}
		if s.fetchTranscript(ctx, logger, runID, result.FolderHash, video.ID, video.Order, title, library.OrderedFileName(video.Order)) {
			result.Downloaded++
		} else {
			result.Failed++
		}
		if ctx.Err() != nil {
			loopErr = ctx.Err()
			break
		}
	}

	// The mapping is written even after cancellation so completed files stay labeled.
	if err := s.store.SaveVideos(context.WithoutCancel(ctx), result.FolderHash, videos); err != nil {
		return result, fmt.Errorf("save video mapping: %w", err)
	}
	logger.Info("playlist download finished",
		logging.Int("downloaded", result.Downloaded),
		logging.Int("failed", result.Failed),
	)
	return result, loopErr
}

func (s *Service) downloadVideo(ctx context.Context, logger *slog.Logger, runID, rawURL string) (Result, error) {
	result := Result{RunID: runID, Type: library.SourceVideo, Total: 1}
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return result, err
	}

	title := s.videoTitle(ctx, logger, videoID)
	result.Title = title
	result.FolderHash = textutil.FolderHash(title)
	result.FolderPath = s.store.FolderPath(result.FolderHash)
	logger = logger.With(logging.String(logging.FieldSourceHash, result.FolderHash))

	if err := s.recordSource(ctx, logger, runID, result, rawURL); err != nil {
		return result, err
	}

	if s.fetchTranscript(ctx, logger, runID, result.FolderHash, videoID, 0, title, library.VideoFileName(videoID)) {
		result.Downloaded++
	} else {
		result.Failed++
	}

	videos := library.VideoMap{1: {ID: videoID, Title: title}}
	if err := s.store.SaveVideos(context.WithoutCancel(ctx), result.FolderHash, videos); err != nil {
		return result, fmt.Errorf("save video mapping: %w", err)
	}
	return result, ctx.Err()
}

func (s *Service) recordSource(ctx context.Context, logger *slog.Logger, runID string, result Result, rawURL string) error {
	entry := library.SourceEntry{Title: result.Title, Type: result.Type}
	if err := s.store.RecordSource(ctx, result.FolderHash, entry); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	if s.catalog == nil {
		return nil
	}
	err := s.catalog.RecordSource(ctx, catalog.Source{
		Hash:  result.FolderHash,
		Title: result.Title,
		Type:  string(result.Type),
		URL:   rawURL,
		RunID: runID,
	})
	if err != nil {
		logging.WarnWithContext(logger, "catalog source write failed", "catalog_write",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history will not list this download"),
		)
	}
	return nil
}

// videoTitle tries the title sources up to titleRetries times and falls back
// to "Video <id>".
func (s *Service) videoTitle(ctx context.Context, logger *slog.Logger, videoID string) string {
	var lastErr error
	for attempt := 1; attempt <= s.titleRetries; attempt++ {
		title, err := s.titles.VideoTitle(ctx, videoID)
		if err == nil && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
		if err == nil {
			err = youtube.ErrNoTitle
		}
		lastErr = err
		if ctx.Err() != nil || attempt == s.titleRetries {
			break
		}
		s.printf("Retrying to get title for video %s (attempt %d/%d)\n", videoID, attempt, s.titleRetries)
		if err := s.sleeper(ctx, s.titleRetryDelay); err != nil {
			break
		}
	}
	s.printf("Could not get title for video %s: %v\n", videoID, lastErr)
	logging.WarnWithContext(logger, "title lookup failed", "title_fallback",
		logging.String(logging.FieldVideoID, videoID),
		logging.Error(lastErr),
		logging.String(logging.FieldImpact, "placeholder title recorded"),
	)
	return FallbackTitle(videoID)
}

// FallbackTitle is the label recorded when no title source answers.
func FallbackTitle(videoID string) string {
	return "Video " + videoID
}

func (s *Service) fetchTranscript(ctx context.Context, logger *slog.Logger, runID, hash, videoID string, order int, title, fileName string) bool {
	record := catalog.Transcript{
		RunID:      runID,
		SourceHash: hash,
		VideoID:    videoID,
		Order:      order,
		Title:      title,
	}
	videoLogger := logger.With(logging.String(logging.FieldVideoID, videoID))

	text, err := s.transcripts.Transcript(ctx, videoID)
	var path string
	if err == nil {
		path, err = s.store.WriteTranscript(hash, fileName, text)
	}
	if err != nil {
		s.printf("Error downloading subtitles for video %s: %v\n", videoID, err)
		logging.WarnWithContext(videoLogger, "transcript download failed", "transcript_skipped",
			logging.Int(logging.FieldOrder, order),
			logging.Error(err),
			logging.String(logging.FieldImpact, "video left out of the folder"),
		)
		record.Status = catalog.TranscriptFailed
		record.Error = err.Error()
		s.recordTranscript(ctx, videoLogger, record)
		return false
	}

	s.printf("Downloaded subtitles for video %s\n", videoID)
	videoLogger.Info("transcript saved", logging.String("path", path), logging.Int("chars", len([]rune(text))))
	record.Status = catalog.TranscriptDownloaded
	record.Path = path
	record.Chars = len([]rune(text))
	s.recordTranscript(ctx, videoLogger, record)
	return true
}

func (s *Service) recordTranscript(ctx context.Context, logger *slog.Logger, record catalog.Transcript) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.RecordTranscript(context.WithoutCancel(ctx), record); err != nil {
		logging.WarnWithContext(logger, "catalog transcript write failed", "catalog_write",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history incomplete for this video"),
		)
	}
}

func (s *Service) newLimiter() *rate.Limiter {
	if s.requestDelay <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(s.requestDelay), 1)
}

func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

func (s *Service) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
