package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// OCR selects the recognition backend and how hard it is driven.
type OCR struct {
	Backend     string `toml:"backend"`
	Concurrency int    `toml:"concurrency"`
}

// Ollama contains settings for the vision-model backend.
type Ollama struct {
	Host           string `toml:"host"`
	Model          string `toml:"model"`
	Prompt         string `toml:"prompt"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// HTTP contains settings for a remote OCR service.
type HTTP struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	TextField      string `toml:"text_field"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Tesseract contains settings for local recognition.
type Tesseract struct {
	Languages []string `toml:"languages"`
	PSM       int      `toml:"psm"`
	Whitelist string   `toml:"whitelist"`
}

// Cache contains settings for the recognition result cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Driver  string `toml:"driver"`
	Path    string `toml:"path"`
	DSN     string `toml:"dsn"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format  string `toml:"format"`
	Level   string `toml:"level"`
	NoColor bool   `toml:"no_color"`
}

// Config encapsulates all configuration values for subocr.
type Config struct {
	OCR       OCR       `toml:"ocr"`
	Ollama    Ollama    `toml:"ollama"`
	HTTP      HTTP      `toml:"http"`
	Tesseract Tesseract `toml:"tesseract"`
	Cache     Cache     `toml:"cache"`
	Logging   Logging   `toml:"logging"`
}

// SampleConfig returns the commented sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error: defaults are returned and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("subocr.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subocr/config.toml")
}

func (c *Config) normalize() error {
	c.OCR.Backend = strings.ToLower(strings.TrimSpace(c.OCR.Backend))
	c.Ollama.Host = strings.TrimSpace(c.Ollama.Host)
	c.Ollama.Model = strings.TrimSpace(c.Ollama.Model)
	c.Ollama.Prompt = strings.TrimSpace(c.Ollama.Prompt)
	c.HTTP.URL = strings.TrimSpace(c.HTTP.URL)
	c.HTTP.APIKey = strings.TrimSpace(c.HTTP.APIKey)
	if c.HTTP.APIKey == "" {
		c.HTTP.APIKey = strings.TrimSpace(os.Getenv(envHTTPAPIKey))
	}
	c.HTTP.TextField = strings.TrimSpace(c.HTTP.TextField)
	c.Cache.Driver = strings.ToLower(strings.TrimSpace(c.Cache.Driver))
	c.Cache.DSN = strings.TrimSpace(c.Cache.DSN)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if os.Getenv(envNoColor) != "" {
		c.Logging.NoColor = true
	}

	langs := c.Tesseract.Languages[:0]
	for _, lang := range c.Tesseract.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	c.Tesseract.Languages = langs

	var err error
	if c.Cache.Path, err = expandPath(strings.TrimSpace(c.Cache.Path)); err != nil {
		return fmt.Errorf("cache path: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
