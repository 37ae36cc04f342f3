package httpocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bdougie/subocr/internal/ocr"
)

func writeFrame(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "0_0_1_000__0_0_2_000.png")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	return path
}

func TestRecognizeStructured(t *testing.T) {
	var received recognizeRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ocr_text": "Xin chào"})
	}))
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL, APIKey: "secret", Language: "vi"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	resp, err := client.Recognize(context.Background(), writeFrame(t, "image-bytes"))
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	text, err := resp.Text()
	if err != nil || text != "Xin chào" {
		t.Fatalf("unexpected text %q (err %v)", text, err)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	decoded, _ := base64.StdEncoding.DecodeString(received.Image)
	if string(decoded) != "image-bytes" {
		t.Fatalf("unexpected image payload %q", decoded)
	}
	if received.Filename != "0_0_1_000__0_0_2_000.png" || received.Language != "vi" {
		t.Fatalf("unexpected request %+v", received)
	}
	if received.MimeType != "image/png" {
		t.Fatalf("unexpected mime type %q", received.MimeType)
	}
}

func TestRecognizeCustomTextField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "custom"})
	}))
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL, TextField: "text"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	resp, err := client.Recognize(context.Background(), writeFrame(t, "x"))
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if text, _ := resp.Text(); text != "custom" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestRecognizePlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("plain\nreply"))
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	resp, err := client.Recognize(context.Background(), writeFrame(t, "x"))
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if text, _ := resp.Text(); text != "plain\nreply" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestRecognizeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	_, err := client.Recognize(context.Background(), writeFrame(t, "x"))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests || statusErr.Body != "slow down" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestRecognizeEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	if _, err := client.Recognize(context.Background(), writeFrame(t, "x")); !errors.Is(err, ocr.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(Config{URL: "  "}); err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestRecognizeTruncatedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ocr_text": "Hello wor`))
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	if _, err := client.Recognize(context.Background(), writeFrame(t, "x")); !errors.Is(err, ocr.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestRecognizeOversizeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(bytes.Repeat([]byte("a"), maxResponseBytes+1))
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	if _, err := client.Recognize(context.Background(), writeFrame(t, "x")); !errors.Is(err, ocr.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestNameScopesRequestSettings(t *testing.T) {
	base, _ := NewClient(Config{URL: "http://ocr.local/read"})
	same, _ := NewClient(Config{URL: "http://ocr.local/read", APIKey: "rotated"})
	field, _ := NewClient(Config{URL: "http://ocr.local/read", TextField: "text"})
	lang, _ := NewClient(Config{URL: "http://ocr.local/read", Language: "ja"})

	if !strings.HasPrefix(base.Name(), "http:http://ocr.local/read") {
		t.Fatalf("unexpected name %q", base.Name())
	}
	if base.Name() != same.Name() {
		t.Fatalf("api key must not change the name: %q vs %q", base.Name(), same.Name())
	}
	if base.Name() == field.Name() || base.Name() == lang.Name() || field.Name() == lang.Name() {
		t.Fatalf("text field and language must change the name: %q %q %q", base.Name(), field.Name(), lang.Name())
	}
}
