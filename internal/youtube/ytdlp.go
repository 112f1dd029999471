package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"subman/internal/logging"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 2 * time.Minute
)

// Ytdlp drives the yt-dlp executable. It resolves playlists, titles, and
// caption tracks without downloading media.
type Ytdlp struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp" on PATH.
	Path string
	// Timeout bounds each invocation.
	Timeout time.Duration
	// Languages is the caption language preference, most preferred first.
	Languages []string

	logger *slog.Logger
}

// NewYtdlp returns a yt-dlp client.
func NewYtdlp(path string, timeout time.Duration, languages []string, logger *slog.Logger) *Ytdlp {
	return &Ytdlp{
		Path:      path,
		Timeout:   timeout,
		Languages: languages,
		logger:    logging.NewComponentLogger(logger, "yt-dlp"),
	}
}

type ytdlpPlaylist struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Entries []ytdlpEntry `json:"entries"`
}

type ytdlpEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ResolvePlaylist lists playlist entries with --flat-playlist.
func (y *Ytdlp) ResolvePlaylist(ctx context.Context, playlistID string) (Playlist, error) {
	out, err := y.run(ctx, "--flat-playlist", "-J", "--no-warnings", PlaylistURL(playlistID))
	if err != nil {
		return Playlist{}, err
	}
	var parsed ytdlpPlaylist
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Playlist{}, fmt.Errorf("parse yt-dlp playlist output: %w", err)
	}
	playlist := Playlist{ID: playlistID, Title: strings.TrimSpace(parsed.Title)}
	for i, entry := range parsed.Entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			continue
		}
		playlist.Videos = append(playlist.Videos, PlaylistVideo{
			ID:    id,
			Order: i + 1,
			Title: strings.TrimSpace(entry.Title),
		})
	}
	return playlist, nil
}

// VideoTitle reads the title from yt-dlp's metadata dump.
func (y *Ytdlp) VideoTitle(ctx context.Context, videoID string) (string, error) {
	out, err := y.run(ctx, "-J", "--skip-download", "--no-warnings", "--no-playlist", WatchURL(videoID))
	if err != nil {
		return "", err
	}
	var parsed ytdlpEntry
	if err := json.Unmarshal(out, &parsed); err != nil {
		return "", fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return "", ErrNoTitle
	}
	return title, nil
}

// Transcript downloads the best json3 caption track for the video into a
// scratch directory and flattens it to text. Manual captions are preferred
// over automatic ones when both exist for a language.
func (y *Ytdlp) Transcript(ctx context.Context, videoID string) (string, error) {
	dir, err := os.MkdirTemp("", "subman-subs-*")
	if err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-format", "json3",
		"--sub-langs", strings.Join(y.subLangs(), ","),
		"--no-warnings",
		"--no-playlist",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		WatchURL(videoID),
	}
	if _, err := y.run(ctx, args...); err != nil {
		return "", err
	}

	track, err := y.pickTrack(dir)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(track)
	if err != nil {
		return "", fmt.Errorf("read caption track: %w", err)
	}
	text, err := ParseJSON3(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoTranscript
	}
	y.logger.Debug("caption track parsed",
		logging.String(logging.FieldVideoID, videoID),
		logging.String("track", filepath.Base(track)),
	)
	return text, nil
}

// Version returns the yt-dlp version string.
func (y *Ytdlp) Version(ctx context.Context) (string, error) {
	out, err := y.run(ctx, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (y *Ytdlp) subLangs() []string {
	langs := make([]string, 0, len(y.Languages))
	for _, lang := range y.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		langs = []string{"en.*"}
	}
	return langs
}

// pickTrack returns the downloaded track matching the earliest language in
// the preference list. An exact language wins over a regional or "-orig"
// variant; with no match the first track by name is used.
func (y *Ytdlp) pickTrack(dir string) (string, error) {
	tracks, err := filepath.Glob(filepath.Join(dir, "*.json3"))
	if err != nil {
		return "", fmt.Errorf("list caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return "", ErrNoTranscript
	}
	sort.Strings(tracks)
	for _, lang := range y.subLangs() {
		prefix := strings.TrimSuffix(strings.TrimSuffix(lang, "*"), ".")
		for _, track := range tracks {
			if trackLanguage(track) == prefix {
				return track, nil
			}
		}
		for _, track := range tracks {
			if strings.HasPrefix(trackLanguage(track), prefix+"-") {
				return track, nil
			}
		}
	}
	return tracks[0], nil
}

// trackLanguage extracts "en" from "<id>.en.json3" and "en-orig" from
// "<id>.en-orig.json3".
func trackLanguage(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".json3")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return ""
}

func (y *Ytdlp) run(ctx context.Context, args ...string) ([]byte, error) {
	timeout := y.Timeout
	if timeout <= 0 {
		timeout = defaultYtdlpTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, y.path(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrYtdlpNotInstalled
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("yt-dlp timed out after %s", timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "no subtitles") || strings.Contains(msg, "There are no subtitles") {
			return nil, ErrNoTranscript
		}
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, msg)
	}
	return stdout.Bytes(), nil
}

func (y *Ytdlp) path() string {
	if strings.TrimSpace(y.Path) != "" {
		return y.Path
	}
	return defaultYtdlpPath
}
