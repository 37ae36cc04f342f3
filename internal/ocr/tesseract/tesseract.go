//go:build tesseract

// Package tesseract runs frames through a local Tesseract install via gosseract.
// It needs libtesseract at build time, so it is only compiled with the
// `tesseract` build tag.
package tesseract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"github.com/bdougie/subocr/internal/ocr"
)

// Config holds Tesseract recognition settings
type Config struct {
	Languages []string
	PSM       int // page segmentation mode; 0 keeps the Tesseract default
	Whitelist string
}

// Engine implements ocr.Backend with one gosseract client per request
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed OCR engine
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single frame
func (e *Engine) Recognize(ctx context.Context, imagePath string) (ocr.Response, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Response{}, err
	}
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImage(imagePath); err != nil {
		return ocr.Response{}, fmt.Errorf("set image: %w", err)
	}
	if len(e.cfg.Languages) > 0 {
		if err := c.SetLanguage(e.cfg.Languages...); err != nil {
			return ocr.Response{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if e.cfg.PSM > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("tessedit_pageseg_mode"), strconv.Itoa(e.cfg.PSM)); err != nil {
			return ocr.Response{}, fmt.Errorf("set psm: %w", err)
		}
	}
	if e.cfg.Whitelist != "" {
		if err := c.SetWhitelist(e.cfg.Whitelist); err != nil {
			return ocr.Response{}, fmt.Errorf("set whitelist: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Response{}, fmt.Errorf("recognize text: %w", err)
	}
	return ocr.Plain(text), nil
}
