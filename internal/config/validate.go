package config

import (
	"errors"
	"fmt"
)

// ErrInvalid marks configuration validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.OCR.Backend {
	case BackendOllama, BackendTesseract:
	case BackendHTTP:
		if c.HTTP.URL == "" {
			return fmt.Errorf("%w: http.url is required for the http backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown ocr.backend %q (want ollama, http or tesseract)", ErrInvalid, c.OCR.Backend)
	}

	if c.OCR.Concurrency < 1 || c.OCR.Concurrency > maxConcurrency {
		return fmt.Errorf("%w: ocr.concurrency must be between 1 and %d, got %d", ErrInvalid, maxConcurrency, c.OCR.Concurrency)
	}
	if c.Ollama.TimeoutSeconds < 0 || c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalid)
	}
	if c.Tesseract.PSM < 0 || c.Tesseract.PSM > 13 {
		return fmt.Errorf("%w: tesseract.psm must be between 0 and 13, got %d", ErrInvalid, c.Tesseract.PSM)
	}

	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case "sqlite":
			if c.Cache.Path == "" {
				return fmt.Errorf("%w: cache.path is required for the sqlite cache", ErrInvalid)
			}
		case "postgres":
			if c.Cache.DSN == "" {
				return fmt.Errorf("%w: cache.dsn is required for the postgres cache", ErrInvalid)
			}
		default:
			return fmt.Errorf("%w: unknown cache.driver %q (want sqlite or postgres)", ErrInvalid, c.Cache.Driver)
		}
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalid, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}
