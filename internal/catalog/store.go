package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewRunID returns a fresh identifier for one CLI operation.
func NewRunID() string {
	return uuid.NewString()
}

// Open initializes or connects to the catalog database.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("catalog path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// RecordSource inserts or refreshes a source folder row.
func (s *Store) RecordSource(ctx context.Context, src Source) error {
	if strings.TrimSpace(src.Hash) == "" {
		return errors.New("record source: hash is required")
	}
	timestamp := formatTime(s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sources (hash, title, source_type, url, run_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(hash) DO UPDATE SET
             title = excluded.title,
             source_type = excluded.source_type,
             url = COALESCE(excluded.url, sources.url),
             run_id = excluded.run_id,
             updated_at = excluded.updated_at`,
		src.Hash, src.Title, src.Type, nullableString(src.URL), src.RunID, timestamp, timestamp,
	)
	if err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	return nil
}

// RecordTranscript appends one download attempt.
func (s *Store) RecordTranscript(ctx context.Context, tr Transcript) error {
	if tr.Status == "" {
		tr.Status = TranscriptDownloaded
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcripts (
            run_id, source_hash, video_id, position, title, file_path, status, error, char_count, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.RunID, tr.SourceHash, tr.VideoID, nullableInt(tr.Order), tr.Title,
		nullableString(tr.Path), string(tr.Status), nullableString(tr.Error), tr.Chars,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("record transcript: %w", err)
	}
	return nil
}

// RecordArtifact appends a generated manuscript or quiz.
func (s *Store) RecordArtifact(ctx context.Context, art Artifact) error {
	if strings.TrimSpace(art.Path) == "" {
		return errors.New("record artifact: path is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (run_id, kind, file_path, detail, byte_count, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		art.RunID, string(art.Kind), art.Path, nullableString(art.Detail), art.Bytes, formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

// Sources returns every source ordered by most recent update.
func (s *Store) Sources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hash, title, source_type, COALESCE(url, ''), run_id, created_at, updated_at
         FROM sources ORDER BY updated_at DESC, hash`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var (
			src              Source
			created, updated string
		)
		if err := rows.Scan(&src.Hash, &src.Title, &src.Type, &src.URL, &src.RunID, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.CreatedAt = parseTime(created)
		src.UpdatedAt = parseTime(updated)
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// Transcripts returns the download attempts for one source in playlist order.
func (s *Store) Transcripts(ctx context.Context, sourceHash string) ([]Transcript, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, source_hash, video_id, COALESCE(position, 0), title,
                COALESCE(file_path, ''), status, COALESCE(error, ''), char_count, created_at
         FROM transcripts WHERE source_hash = ? ORDER BY position, id`, sourceHash)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var out []Transcript
	for rows.Next() {
		var (
			tr      Transcript
			status  string
			created string
		)
		if err := rows.Scan(&tr.ID, &tr.RunID, &tr.SourceHash, &tr.VideoID, &tr.Order, &tr.Title,
			&tr.Path, &status, &tr.Error, &tr.Chars, &created); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		tr.Status = TranscriptStatus(status)
		tr.CreatedAt = parseTime(created)
		out = append(out, tr)
	}
	return out, rows.Err()
}

// Recent returns the newest history events across sources and artifacts.
// Transcript rows are summarized per source and run.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT kind, title, detail, path, bytes, run_id, created_at FROM (
            SELECT 'download' AS kind, s.title AS title,
                   printf('%d saved, %d failed',
                          SUM(CASE WHEN t.status = 'downloaded' THEN 1 ELSE 0 END),
                          SUM(CASE WHEN t.status = 'failed' THEN 1 ELSE 0 END)) AS detail,
                   s.hash AS path, SUM(t.char_count) AS bytes,
                   t.run_id AS run_id, MAX(t.created_at) AS created_at
            FROM transcripts t JOIN sources s ON s.hash = t.source_hash
            GROUP BY t.source_hash, t.run_id
            UNION ALL
            SELECT kind, file_path AS title, COALESCE(detail, '') AS detail,
                   file_path AS path, byte_count AS bytes, run_id, created_at
            FROM artifacts
        ) ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev      Event
			created string
		)
		if err := rows.Scan(&ev.Kind, &ev.Title, &ev.Detail, &ev.Path, &ev.Bytes, &ev.RunID, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		ev.CreatedAt = parseTime(created)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value <= 0 {
		return nil
	}
	return value
}

// timeLayout is fixed width so timestamps sort lexically in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
