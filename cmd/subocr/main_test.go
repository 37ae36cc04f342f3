package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bdougie/subocr/internal/config"
	"github.com/bdougie/subocr/internal/pipeline"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFrames(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img:"+name), 0o644); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
	return dir
}

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// newOCRServer answers with the text registered for the posted filename and
// fails any frame listed in failing.
func newOCRServer(t *testing.T, texts map[string]string, failing map[string]bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Filename string `json:"filename"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if failing[req.Filename] {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"ocr_text": texts[req.Filename]})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConvertEndToEnd(t *testing.T) {
	a := "0_00_01_000__0_00_02_500.png"
	b := "0_00_03_000__0_00_04_000.png"
	c := "0_00_05_000__0_00_06_000.jpg"
	dir := writeFrames(t, a, b, c, "readme.txt")

	server := newOCRServer(t,
		map[string]string{a: "Hello\nthere", c: "Bye"},
		map[string]bool{b: true},
	)
	cfgPath := writeTestConfig(t, fmt.Sprintf("[ocr]\nbackend = \"http\"\n\n[http]\nurl = %q\n", server.URL))
	out := filepath.Join(t.TempDir(), "movie.srt")

	stdout, _, err := execute(t, "-c", cfgPath, "-p", dir, "-o", out, "-j", "2", "--log-level", "error")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "1\n00:00:01,000 --> 00:00:02,500\nHello there\n\n" +
		"2\n00:00:05,000 --> 00:00:06,000\nBye\n\n"
	if string(got) != want {
		t.Fatalf("srt mismatch\n got: %q\nwant: %q", got, want)
	}

	if !strings.Contains(stdout, "OCR → "+a) || !strings.Contains(stdout, "OCR → "+c) {
		t.Fatalf("missing progress lines in %q", stdout)
	}
	if strings.Contains(stdout, "OCR → "+b) {
		t.Fatalf("failed frame must not report progress: %q", stdout)
	}
	wantSummary := fmt.Sprintf("Subtitle written: %s (2 entries from 3 frames, 1 failed)", out)
	if !strings.Contains(stdout, wantSummary) {
		t.Fatalf("expected %q in %q", wantSummary, stdout)
	}
}

func TestConvertNoImages(t *testing.T) {
	dir := writeFrames(t, "notes.txt")
	out := filepath.Join(t.TempDir(), "out.srt")
	cfgPath := filepath.Join(t.TempDir(), "absent.toml")

	_, _, err := execute(t, "-c", cfgPath, "-p", dir, "-o", out, "--backend", "http")
	// The http backend needs a url, so validation trips first.
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	server := newOCRServer(t, nil, nil)
	cfgPath = writeTestConfig(t, fmt.Sprintf("[ocr]\nbackend = \"http\"\n\n[http]\nurl = %q\n", server.URL))
	_, _, err = execute(t, "-c", cfgPath, "-p", dir, "-o", out)
	if !errors.Is(err, pipeline.ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output must not be created, stat err = %v", statErr)
	}
}

func TestConvertRequiresPath(t *testing.T) {
	_, _, err := execute(t)
	if err == nil || !strings.Contains(err.Error(), "path") {
		t.Fatalf("expected missing --path error, got %v", err)
	}
}

func TestConvertRejectsBadConcurrency(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "absent.toml")
	_, _, err := execute(t, "-c", cfgPath, "-p", t.TempDir(), "-j", "0")
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestFramesCommand(t *testing.T) {
	dir := writeFrames(t, "0_00_01_000__0_00_02_000.png", "title.webp")

	stdout, _, err := execute(t, "frames", "-p", dir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"00:00:01,000", "00:00:02,000", "1s", "title.webp", "dropped: no timecode", "2 frames, 1 without timecode"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestFramesCommandEmptyDir(t *testing.T) {
	_, _, err := execute(t, "frames", "-p", t.TempDir())
	if !errors.Is(err, pipeline.ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	stdout, _, err := execute(t, "config", "init")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stdout != config.SampleConfig() {
		t.Fatalf("expected sample config on stdout, got %q", stdout)
	}

	target := filepath.Join(t.TempDir(), "nested", "subocr.toml")
	if _, _, err := execute(t, "config", "init", "-p", target); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, err := execute(t, "config", "init", "-p", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
	if _, _, err := execute(t, "config", "init", "-p", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	cmd := newRootCommand()
	args := []string{"--no-color", "--log-level", "WARN", "-j", "7", "--backend", "tesseract"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(cmd, filepath.Join(t.TempDir(), "absent.toml"), runFlags{
		noColor:     true,
		logLevel:    "WARN",
		concurrency: 7,
		backend:     "tesseract",
	})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Logging.NoColor || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging section %+v", cfg.Logging)
	}
	if cfg.OCR.Concurrency != 7 || cfg.OCR.Backend != config.BackendTesseract {
		t.Fatalf("unexpected ocr section %+v", cfg.OCR)
	}
}

func TestFramesCommandHugeHours(t *testing.T) {
	dir := writeFrames(t, "2562047_00_00_000__2562048_00_00_000.png")

	stdout, _, err := execute(t, "frames", "-p", dir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(stdout, "ends before start") {
		t.Fatalf("overflowing hours reported as reversed:\n%s", stdout)
	}
	if !strings.Contains(stdout, "2562048:00:00,000") {
		t.Fatalf("expected end timecode in output:\n%s", stdout)
	}
}
