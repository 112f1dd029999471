package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"subman/internal/fileutil"
	"subman/internal/logging"
)

const (
	// SourceMappingFile is the global folder index inside the subtitles root.
	SourceMappingFile = "mapping.json"
	// VideoMappingFile is the per-folder order index.
	VideoMappingFile = "video_mapping.json"

	lockFileName       = ".mapping.lock"
	defaultLockTimeout = 10 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// ErrLocked reports that another process held the mapping lock for longer
// than the lock timeout.
var ErrLocked = errors.New("library: mapping files are locked by another process")

// Store reads and writes the subtitles directory tree.
type Store struct {
	root        string
	logger      *slog.Logger
	lockTimeout time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithLockTimeout overrides how long mapping updates wait for the lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// New returns a store rooted at the subtitles directory. Nothing is created
// until the first write.
func New(root string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		root:        root,
		logger:      logging.NewComponentLogger(logger, "library"),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the subtitles directory.
func (s *Store) Root() string { return s.root }

// FolderPath returns the directory for a source folder hash.
func (s *Store) FolderPath(hash string) string {
	return filepath.Join(s.root, hash)
}

// LoadSources reads mapping.json. A missing file yields an empty mapping.
func (s *Store) LoadSources() (*SourceMap, error) {
	path := filepath.Join(s.root, SourceMappingFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewSourceMap(), nil
		}
		return nil, fmt.Errorf("read %s: %w", SourceMappingFile, err)
	}
	mapping := NewSourceMap()
	if err := mapping.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SourceMappingFile, err)
	}
	return mapping, nil
}

// RecordSource adds or replaces one folder entry in mapping.json, keeping
// every other entry intact.
func (s *Store) RecordSource(ctx context.Context, hash string, entry SourceEntry) error {
	return s.withLock(ctx, func() error {
		mapping, err := s.LoadSources()
		if err != nil {
			return err
		}
		mapping.Set(hash, entry)
		data, err := encodeIndented(mapping)
		if err != nil {
			return fmt.Errorf("encode %s: %w", SourceMappingFile, err)
		}
		if err := fileutil.WriteFileAtomic(filepath.Join(s.root, SourceMappingFile), data, 0o644); err != nil {
			return err
		}
		s.logger.Debug("source mapping updated",
			logging.String(logging.FieldSourceHash, hash),
			logging.String("source_type", string(entry.Type)),
		)
		return nil
	})
}

// LoadVideos reads a folder's video_mapping.json. A missing file yields an
// empty mapping.
func (s *Store) LoadVideos(hash string) (VideoMap, error) {
	path := filepath.Join(s.FolderPath(hash), VideoMappingFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return VideoMap{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", VideoMappingFile, err)
	}
	var videos VideoMap
	if err := videos.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", VideoMappingFile, err)
	}
	return videos, nil
}

// SaveVideos replaces a folder's video_mapping.json.
func (s *Store) SaveVideos(ctx context.Context, hash string, videos VideoMap) error {
	return s.withLock(ctx, func() error {
		if videos == nil {
			videos = VideoMap{}
		}
		data, err := encodeIndented(videos)
		if err != nil {
			return fmt.Errorf("encode %s: %w", VideoMappingFile, err)
		}
		return fileutil.WriteFileAtomic(filepath.Join(s.FolderPath(hash), VideoMappingFile), data, 0o644)
	})
}

// WriteTranscript stores transcript text under the folder and returns the
// written path.
func (s *Store) WriteTranscript(hash, name, content string) (string, error) {
	path := filepath.Join(s.FolderPath(hash), name)
	if err := fileutil.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// OrderedFileName is the transcript name for a playlist position.
func OrderedFileName(order int) string {
	return strconv.Itoa(order) + ".txt"
}

// VideoFileName is the transcript name for a standalone video.
func VideoFileName(videoID string) string {
	return videoID + ".txt"
}

func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create subtitles directory: %w", err)
	}
	lock := flock.New(filepath.Join(s.root, lockFileName))

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLocked
		}
		return fmt.Errorf("acquire mapping lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("release mapping lock failed", logging.Error(err))
		}
	}()
	return fn()
}
