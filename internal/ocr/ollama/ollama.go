// Package ollama reads subtitle frames with a vision model served by Ollama.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/bdougie/subocr/internal/logging"
	"github.com/bdougie/subocr/internal/ocr"
)

const (
	DefaultModel   = "llama3.2-vision:11b"
	DefaultTimeout = 120 * time.Second

	// DefaultPrompt asks for the structured {"ocr_text": ...} reply the
	// pipeline normalizes; models that ignore it fall back to raw text.
	DefaultPrompt = `Transcribe the subtitle text shown in this image exactly as written, keeping the original language and punctuation. Do not translate or describe the image. Respond with JSON only: {"ocr_text": "<text>"}. If there is no text, respond with {"ocr_text": ""}.`

	systemPrompt = "You are an OCR engine for video subtitles. You only output the text visible in the image."
)

// Config holds the settings for the Ollama backend
type Config struct {
	Host    string // empty uses OLLAMA_HOST or the local default
	Model   string
	Prompt  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Backend sends each frame to an Ollama vision model as a single chat turn
type Backend struct {
	client *api.Client
	cfg    Config
	logger *slog.Logger
}

// New initializes and returns a new Ollama backend
func New(cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var client *api.Client
	if host := strings.TrimSpace(cfg.Host); host != "" {
		base, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
		}
		client = api.NewClient(base, &http.Client{Timeout: cfg.Timeout})
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client from environment: %w", err)
		}
	}

	return &Backend{
		client: client,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "ollama").With("model", cfg.Model),
	}, nil
}

// Name identifies the model and the prompts sent with each frame.
func (b *Backend) Name() string {
	return "ollama:" + b.cfg.Model + "#" + ocr.ScopeHash(systemPrompt, b.cfg.Prompt)
}

// Ping verifies that the Ollama server is reachable before a run starts
func (b *Backend) Ping(ctx context.Context) error {
	if _, err := b.client.Version(ctx); err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	return nil
}

// Recognize transcribes the subtitle text of a single frame
func (b *Backend) Recognize(ctx context.Context, imagePath string) (ocr.Response, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return ocr.Response{}, fmt.Errorf("read image: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	stream := false
	req := &api.ChatRequest{
		Model: b.cfg.Model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{
				Role:    "user",
				Content: b.cfg.Prompt,
				Images:  []api.ImageData{imageData},
			},
		},
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
		Options: map[string]any{
			"temperature": 0,
		},
	}

	var content strings.Builder
	err = b.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return ocr.Response{}, fmt.Errorf("ollama chat: %w", err)
	}

	raw := stripCodeFence(content.String())
	b.logger.Debug("raw response content", "content", raw)

	resp, err := ocr.DecodeResponse([]byte(raw))
	if errors.Is(err, ocr.ErrEmptyResponse) {
		// a model with nothing to read may answer with nothing at all
		return ocr.Plain(""), nil
	}
	return resp, err
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
