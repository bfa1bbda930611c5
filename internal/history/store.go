package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const entryColumns = `id, video_id, url, language, segments, sign_items, words, duration_seconds,
	stages_from_cache, emotion, model, request_id, status, error_message, created_at`

// DefaultLimit is the number of rows Recent returns when limit is not positive.
const DefaultLimit = 10

// Store persists analysis history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts e and returns its row ID. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.VideoID == "" {
		return 0, errors.New("record history: video id required")
	}
	if e.Status == "" {
		e.Status = StatusCompleted
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (
			video_id, url, language, segments, sign_items, words, duration_seconds,
			stages_from_cache, emotion, model, request_id, status, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.VideoID,
		e.URL,
		nullableString(e.Language),
		e.Segments,
		e.SignItems,
		e.Words,
		e.DurationSeconds,
		nullableString(joinStages(e.StagesFromCache)),
		boolToInt(e.Emotion),
		nullableString(e.Model),
		nullableString(e.RequestID),
		e.Status,
		nullableString(e.ErrorMessage),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.query(ctx, `SELECT `+entryColumns+` FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// ForVideo returns every run for videoID, newest first.
func (s *Store) ForVideo(ctx context.Context, videoID string) ([]Entry, error) {
	return s.query(ctx, `SELECT `+entryColumns+` FROM analyses WHERE video_id = ? ORDER BY created_at DESC, id DESC`, videoID)
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}

// Clear deletes every row and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses`)
	if err != nil {
		return 0, fmt.Errorf("clear analyses: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		e         Entry
		language  sql.NullString
		stages    sql.NullString
		emotion   int
		model     sql.NullString
		requestID sql.NullString
		errMsg    sql.NullString
		created   string
	)
	if err := scanner.Scan(
		&e.ID, &e.VideoID, &e.URL, &language, &e.Segments, &e.SignItems, &e.Words,
		&e.DurationSeconds, &stages, &emotion, &model, &requestID, &e.Status, &errMsg, &created,
	); err != nil {
		return Entry{}, fmt.Errorf("scan analysis: %w", err)
	}
	e.Language = language.String
	e.StagesFromCache = splitStages(stages.String)
	e.Emotion = emotion != 0
	e.Model = model.String
	e.RequestID = requestID.String
	e.ErrorMessage = errMsg.String
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	e.CreatedAt = ts
	return e, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
