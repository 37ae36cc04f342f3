package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bdougie/subocr/internal/models"
)

// imageExtensions lists the frame formats accepted, compared lower-cased
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// IsImage reports whether the filename carries a recognized image extension
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListFrames enumerates the subtitle frames in dir, sorted by filename.
// The sort order is the canonical sequence for the rest of the pipeline, so
// frame names are expected to sort the same way as their timecodes.
func ListFrames(dir string) ([]models.Frame, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("frames directory '%s': %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frames path '%s' is not a directory", dir)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames directory '%s': %w", dir, err)
	}

	var names []string
	for _, file := range files {
		if !file.IsDir() && IsImage(file.Name()) {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	frames := make([]models.Frame, len(names))
	for i, name := range names {
		frames[i] = models.Frame{
			Name:  name,
			Path:  filepath.Join(dir, name),
			Index: i + 1,
			Total: len(names),
		}
	}
	return frames, nil
}
