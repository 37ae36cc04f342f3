// Package httpocr talks to a remote OCR service over HTTP. Each frame is
// posted as base64 JSON and the reply is either a JSON object carrying the
// recognized text or a plain text body.
package httpocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bdougie/subocr/internal/ocr"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 4 << 20
)

// Config captures the settings required to reach the OCR service.
type Config struct {
	URL            string
	APIKey         string
	TextField      string
	Language       string
	TimeoutSeconds int
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ocr request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client posts frames to the OCR service.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client for the configured endpoint.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		return nil, errors.New("httpocr: url required")
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.TextField = strings.TrimSpace(cfg.TextField)
	if cfg.TextField == "" {
		cfg.TextField = ocr.TextField
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies the endpoint together with the reply field and language,
// which change what a cached result means.
func (c *Client) Name() string {
	return "http:" + c.cfg.URL + "#" + ocr.ScopeHash(c.cfg.TextField, c.cfg.Language)
}

type recognizeRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type,omitempty"`
	Language string `json:"language,omitempty"`
}

// Recognize uploads one image and returns the service's reply.
func (c *Client) Recognize(ctx context.Context, imagePath string) (ocr.Response, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return ocr.Response{}, fmt.Errorf("read image: %w", err)
	}
	body, err := json.Marshal(recognizeRequest{
		Image:    base64.StdEncoding.EncodeToString(data),
		Filename: filepath.Base(imagePath),
		MimeType: mime.TypeByExtension(strings.ToLower(filepath.Ext(imagePath))),
		Language: c.cfg.Language,
	})
	if err != nil {
		return ocr.Response{}, fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return ocr.Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ocr.Response{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return ocr.Response{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(payload) > maxResponseBytes {
			payload = payload[:maxResponseBytes]
		}
		return ocr.Response{}, &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	if len(payload) > maxResponseBytes {
		return ocr.Response{}, fmt.Errorf("%w: response exceeds %d bytes", ocr.ErrMalformedResponse, maxResponseBytes)
	}

	result, err := ocr.DecodeResponse(payload)
	if err != nil {
		return ocr.Response{}, err
	}
	if result.Fields != nil {
		result.TextKey = c.cfg.TextField
	}
	return result, nil
}
