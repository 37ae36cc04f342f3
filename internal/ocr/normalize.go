package ocr

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds recognized text onto a single caption line: the text is
// composed to NFC, every whitespace run (newlines included) becomes one
// space, and the ends are trimmed.
func Normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// Extract turns a backend response into caption text.
func Extract(resp Response) (string, error) {
	text, err := resp.Text()
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}
