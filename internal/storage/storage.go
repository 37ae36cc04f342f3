package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bdougie/subocr/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Storage caches recognized text by frame content so reruns skip frames that
// were already read successfully
type Storage interface {
	// Lookup returns the cached text for key, if any
	Lookup(ctx context.Context, key string) (string, bool, error)

	// Save records a successful recognition
	Save(ctx context.Context, key string, result models.Recognition) error

	// Flush ensures all pending results are saved
	Flush(ctx context.Context) error

	Close() error
}

// Config selects and locates the cache backend
type Config struct {
	Driver string
	Path   string // sqlite database file
	DSN    string // postgres connection string
}

// Open connects the configured cache
func Open(ctx context.Context, cfg Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := NewPostgresStorage(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// Key derives the cache key for a frame: the image content hash scoped to
// the backend that read it
func Key(backend, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open frame for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash frame: %w", err)
	}
	content := hex.EncodeToString(h.Sum(nil))

	scoped := sha256.Sum256([]byte(backend + "\x00" + content))
	return hex.EncodeToString(scoped[:]), nil
}
