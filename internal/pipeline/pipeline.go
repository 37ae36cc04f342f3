// Package pipeline wires frame enumeration, OCR dispatch, aggregation and
// SRT output into a single run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bdougie/subocr/internal/dispatcher"
	"github.com/bdougie/subocr/internal/extractor"
	"github.com/bdougie/subocr/internal/logging"
	"github.com/bdougie/subocr/internal/ocr"
	"github.com/bdougie/subocr/internal/storage"
	"github.com/bdougie/subocr/internal/subtitles"
)

// ErrNoFrames is returned when the input directory holds no recognized images.
var ErrNoFrames = errors.New("no subtitle images found")

// Options describes a single run.
type Options struct {
	InputDir    string
	OutputPath  string
	Concurrency int
	Backend     ocr.Backend
	Cache       storage.Storage // optional
	Logger      *slog.Logger
	Progress    io.Writer // per-frame progress lines; nil discards them
}

// Summary reports what a run produced.
type Summary struct {
	Frames  int
	Entries int
	Failed  int
	Cached  int
	Dropped int // frames with text but no timecode in their name
}

// Run converts the frames in opts.InputDir into an SRT file at opts.OutputPath.
// Nothing is written when the directory has no frames or when ctx is done
// before the output is produced.
func Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	if opts.Backend == nil {
		return summary, errors.New("pipeline: ocr backend required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithComponent(logger, "pipeline")

	frames, err := extractor.ListFrames(opts.InputDir)
	if err != nil {
		return summary, err
	}
	if len(frames) == 0 {
		return summary, fmt.Errorf("%w in '%s'", ErrNoFrames, opts.InputDir)
	}
	summary.Frames = len(frames)
	logger.Info("found frames to recognize", "frames", len(frames), "dir", opts.InputDir)

	d := dispatcher.New(opts.Backend,
		dispatcher.WithConcurrency(opts.Concurrency),
		dispatcher.WithLogger(opts.Logger),
		dispatcher.WithProgress(opts.Progress),
		dispatcher.WithCache(opts.Cache),
	)
	results := d.Dispatch(ctx, frames)

	if opts.Cache != nil {
		// Successful frames are kept for the next run even when this one was interrupted.
		if err := opts.Cache.Flush(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("cache flush failed", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("run interrupted, output not written", "output", opts.OutputPath)
		return summary, fmt.Errorf("run interrupted: %w", err)
	}

	withText := 0
	for _, r := range results {
		switch {
		case r.Failed():
			summary.Failed++
		case r.Text != "":
			withText++
		}
		if r.Cached {
			summary.Cached++
		}
	}

	entries := subtitles.Aggregate(results)
	summary.Entries = len(entries)
	summary.Dropped = withText - len(entries)

	if err := subtitles.WriteFile(opts.OutputPath, entries); err != nil {
		return summary, err
	}

	logger.Info("subtitle written",
		"output", opts.OutputPath,
		"entries", summary.Entries,
		"failed", summary.Failed,
		"cached", summary.Cached,
		"dropped", summary.Dropped,
	)
	return summary, nil
}
