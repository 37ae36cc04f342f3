// Package dispatcher fans frame recognition out to an OCR backend under a
// concurrency cap and gathers the results back in enumeration order.
package dispatcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bdougie/subocr/internal/logging"
	"github.com/bdougie/subocr/internal/models"
	"github.com/bdougie/subocr/internal/ocr"
	"github.com/bdougie/subocr/internal/storage"
)

// DefaultConcurrency keeps a remote OCR service under its rate limits.
const DefaultConcurrency = 4

// Dispatcher issues one recognition request per frame
type Dispatcher struct {
	backend     ocr.Backend
	concurrency int
	cache       storage.Storage
	logger      *slog.Logger

	progress   io.Writer
	progressMu sync.Mutex
}

// Option customizes the dispatcher
type Option func(*Dispatcher)

// WithConcurrency sets how many requests may be in flight at once
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithLogger sets the logger used for per-frame warnings
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithProgress sets where the per-frame progress lines are written. A nil
// writer discards them.
func WithProgress(w io.Writer) Option {
	return func(d *Dispatcher) {
		if w == nil {
			w = io.Discard
		}
		d.progress = w
	}
}

// WithCache serves repeated frames from a result cache
func WithCache(cache storage.Storage) Option {
	return func(d *Dispatcher) {
		d.cache = cache
	}
}

// New creates a dispatcher for backend
func New(backend ocr.Backend, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend:     backend,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
		progress:    io.Discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.WithComponent(d.logger, "dispatcher").With("backend", backend.Name())
	return d
}

// Dispatch recognizes every frame and returns one result per frame, in the
// same order as frames. All requests are started before any is awaited; a
// failed frame yields an empty result and never stops the others.
func (d *Dispatcher) Dispatch(ctx context.Context, frames []models.Frame) []models.Recognition {
	results := make([]models.Recognition, len(frames))
	g := newGate(d.concurrency)

	d.logger.Info("dispatching frames", "frames", len(frames), "concurrency", d.concurrency)

	var wg sync.WaitGroup
	for i, frame := range frames {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.recognize(ctx, g, frame)
		}()
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) recognize(ctx context.Context, g *gate, frame models.Frame) models.Recognition {
	result := models.Recognition{Frame: frame}

	key := d.cacheKey(frame)
	if text, ok := d.lookup(ctx, key, frame); ok {
		result.Text = text
		result.Cached = true
		d.reportProgress(frame, true)
		return result
	}

	resp, err := d.call(ctx, g, frame)
	if err == nil {
		result.Text, err = ocr.Extract(resp)
	}
	if err != nil {
		d.logger.Warn("ocr failed", "file", frame.Name, "error", err)
		result.Text = ""
		result.Err = err
		return result
	}

	d.reportProgress(frame, false)
	d.save(ctx, key, result)
	return result
}

// call holds a gate slot for exactly one backend request.
func (d *Dispatcher) call(ctx context.Context, g *gate, frame models.Frame) (resp ocr.Response, err error) {
	if err := g.acquire(ctx); err != nil {
		return ocr.Response{}, fmt.Errorf("wait for ocr slot: %w", err)
	}
	defer g.release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ocr backend panic: %v", r)
		}
	}()
	return d.backend.Recognize(ctx, frame.Path)
}

func (d *Dispatcher) reportProgress(frame models.Frame, cached bool) {
	d.progressMu.Lock()
	defer d.progressMu.Unlock()
	suffix := ""
	if cached {
		suffix = " (cached)"
	}
	fmt.Fprintf(d.progress, "[%d/%d] OCR → %s%s\n", frame.Index, frame.Total, frame.Name, suffix)
}

func (d *Dispatcher) cacheKey(frame models.Frame) string {
	if d.cache == nil {
		return ""
	}
	key, err := storage.Key(d.backend.Name(), frame.Path)
	if err != nil {
		d.logger.Debug("cache key unavailable", "file", frame.Name, "error", err)
		return ""
	}
	return key
}

func (d *Dispatcher) lookup(ctx context.Context, key string, frame models.Frame) (string, bool) {
	if d.cache == nil || key == "" {
		return "", false
	}
	text, ok, err := d.cache.Lookup(ctx, key)
	if err != nil {
		d.logger.Warn("cache lookup failed", "file", frame.Name, "error", err)
		return "", false
	}
	return text, ok && text != ""
}

func (d *Dispatcher) save(ctx context.Context, key string, result models.Recognition) {
	if d.cache == nil || key == "" || result.Text == "" {
		return
	}
	if err := d.cache.Save(ctx, key, result); err != nil {
		d.logger.Warn("cache save failed", "file", result.Frame.Name, "error", err)
	}
}
