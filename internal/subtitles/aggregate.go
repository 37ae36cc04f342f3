package subtitles

import (
	"github.com/bdougie/subocr/internal/models"
	"github.com/bdougie/subocr/internal/timecode"
)

// Aggregate turns recognition results into numbered entries. Results are
// walked in the order given, which must be the frame enumeration order.
// Frames with no text or without a timecode in their name are dropped, and
// numbering only advances on emitted entries.
func Aggregate(results []models.Recognition) []models.Entry {
	entries := make([]models.Entry, 0, len(results))
	for _, result := range results {
		if result.Text == "" {
			continue
		}
		start, end, ok := timecode.Parse(result.Frame.Name)
		if !ok {
			continue
		}
		entries = append(entries, models.Entry{
			Index: len(entries) + 1,
			Start: start,
			End:   end,
			Text:  result.Text,
		})
	}
	return entries
}
