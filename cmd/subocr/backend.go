package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bdougie/subocr/internal/config"
	"github.com/bdougie/subocr/internal/ocr"
	"github.com/bdougie/subocr/internal/ocr/httpocr"
	"github.com/bdougie/subocr/internal/ocr/ollama"
)

func newBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ocr.Backend, error) {
	switch cfg.OCR.Backend {
	case config.BackendOllama:
		b, err := ollama.New(ollama.Config{
			Host:    cfg.Ollama.Host,
			Model:   cfg.Ollama.Model,
			Prompt:  cfg.Ollama.Prompt,
			Timeout: time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		// Not fatal: frames fail individually.
		if err := b.Ping(ctx); err != nil {
			logger.Warn("ollama health check failed", "error", err)
		}
		return b, nil
	case config.BackendHTTP:
		c, err := httpocr.NewClient(httpocr.Config{
			URL:            cfg.HTTP.URL,
			APIKey:         cfg.HTTP.APIKey,
			TextField:      cfg.HTTP.TextField,
			Language:       cfg.HTTP.Language,
			TimeoutSeconds: cfg.HTTP.TimeoutSeconds,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendTesseract:
		return newTesseractBackend(cfg.Tesseract)
	default:
		return nil, fmt.Errorf("%w: unknown ocr backend %q", config.ErrInvalid, cfg.OCR.Backend)
	}
}
