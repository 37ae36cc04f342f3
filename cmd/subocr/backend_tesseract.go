//go:build tesseract

package main

import (
	"github.com/bdougie/subocr/internal/config"
	"github.com/bdougie/subocr/internal/ocr"
	"github.com/bdougie/subocr/internal/ocr/tesseract"
)

func newTesseractBackend(cfg config.Tesseract) (ocr.Backend, error) {
	return tesseract.New(tesseract.Config{
		Languages: cfg.Languages,
		PSM:       cfg.PSM,
		Whitelist: cfg.Whitelist,
	}), nil
}
