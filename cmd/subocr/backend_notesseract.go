//go:build !tesseract

package main

import (
	"errors"

	"github.com/bdougie/subocr/internal/config"
	"github.com/bdougie/subocr/internal/ocr"
)

func newTesseractBackend(config.Tesseract) (ocr.Backend, error) {
	return nil, errors.New("subocr was built without tesseract support; rebuild with -tags tesseract")
}
