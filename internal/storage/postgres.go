package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bdougie/subocr/internal/models"
)

// PostgresStorage shares the cache between machines through PostgreSQL
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a new PostgreSQL storage connection
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres cache dsn required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &PostgresStorage{pool: pool}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return storage, nil
}

// initSchema creates the cache table if it doesn't exist
func (s *PostgresStorage) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS ocr_results (
            cache_key TEXT PRIMARY KEY,
            frame TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}
	return nil
}

// Lookup returns a cached result for key
func (s *PostgresStorage) Lookup(ctx context.Context, key string) (string, bool, error) {
	var text string
	err := s.pool.QueryRow(ctx,
		"SELECT content FROM ocr_results WHERE cache_key = $1", key).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error checking for cached result: %w", err)
	}
	return text, true, nil
}

// Save stores a successful result immediately
func (s *PostgresStorage) Save(ctx context.Context, key string, result models.Recognition) error {
	if result.Text == "" || result.Failed() {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ocr_results (cache_key, frame, content, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (cache_key) DO UPDATE SET content = EXCLUDED.content, frame = EXCLUDED.frame`,
		key, result.Frame.Name, result.Text, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store cached result: %w", err)
	}
	return nil
}

// Flush implements the Storage interface - no-op for Postgres as we save immediately
func (s *PostgresStorage) Flush(ctx context.Context) error {
	return nil
}

// Close closes the database connection
func (s *PostgresStorage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
