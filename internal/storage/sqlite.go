package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bdougie/subocr/internal/models"
)

const batchSize = 10 // Number of results to batch write

type pendingResult struct {
	key    string
	frame  string
	text   string
	stored time.Time
}

// SQLiteStorage keeps the cache in a local database file. Saves are batched
// and written in a single transaction.
type SQLiteStorage struct {
	db      *sql.DB
	path    string
	mu      sync.Mutex
	pending []pendingResult
}

// OpenSQLite opens or creates the cache database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteStorage, error) {
	if path == "" {
		return nil, errors.New("sqlite cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	_, err = db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS ocr_results (
            cache_key TEXT PRIMARY KEY,
            frame TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TEXT NOT NULL
        )`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: path}, nil
}

// Lookup checks pending writes first, then the database
func (s *SQLiteStorage) Lookup(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	for i := len(s.pending) - 1; i >= 0; i-- {
		if s.pending[i].key == key {
			text := s.pending[i].text
			s.mu.Unlock()
			return text, true, nil
		}
	}
	s.mu.Unlock()

	var text string
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM ocr_results WHERE cache_key = ?", key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup cached result: %w", err)
	}
	return text, true, nil
}

// Save adds a result to the batch and flushes if the batch is full
func (s *SQLiteStorage) Save(ctx context.Context, key string, result models.Recognition) error {
	if result.Text == "" || result.Failed() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, pendingResult{
		key:    key,
		frame:  result.Frame.Name,
		text:   result.Text,
		stored: time.Now().UTC(),
	})

	// Write to disk when batch is full
	if len(s.pending) >= batchSize {
		return s.flush(ctx)
	}
	return nil
}

// Flush writes all pending results to disk
func (s *SQLiteStorage) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush(ctx)
}

func (s *SQLiteStorage) flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache flush: %w", err)
	}
	for _, p := range s.pending {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ocr_results (cache_key, frame, content, created_at)
            VALUES (?, ?, ?, ?)
            ON CONFLICT(cache_key) DO UPDATE SET content = excluded.content, frame = excluded.frame`,
			p.key, p.frame, p.text, p.stored.Format(time.RFC3339Nano))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to store cached result: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache flush: %w", err)
	}

	s.pending = nil // Clear the batch
	return nil
}

// Close flushes pending results and closes the database
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	flushErr := s.Flush(context.Background())
	closeErr := s.db.Close()
	return errors.Join(flushErr, closeErr)
}
