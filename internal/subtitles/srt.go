package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/bdougie/subocr/internal/models"
)

// WriteSRT serializes entries as SRT cues. Text is written as-is.
func WriteSRT(w io.Writer, entries []models.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", e.Index, e.Start, e.End, e.Text); err != nil {
			return fmt.Errorf("write srt cue %d: %w", e.Index, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush srt: %w", err)
	}
	return nil
}

// WriteFile writes entries to path, replacing any existing file.
func WriteFile(path string, entries []models.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create srt: %w", err)
	}
	if err := WriteSRT(f, entries); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close srt: %w", err)
	}
	return nil
}
