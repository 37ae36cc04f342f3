package config

const (
	BackendOllama    = "ollama"
	BackendHTTP      = "http"
	BackendTesseract = "tesseract"

	defaultBackend       = BackendOllama
	defaultConcurrency   = 4
	defaultOllamaModel   = "llama3.2-vision:11b"
	defaultOllamaTimeout = 120
	defaultHTTPTextField = "ocr_text"
	defaultHTTPTimeout   = 30
	defaultCacheDriver   = "sqlite"
	defaultCachePath     = "~/.cache/subocr/ocr.db"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	maxConcurrency       = 64
	envHTTPAPIKey        = "SUBOCR_HTTP_API_KEY"
	envNoColor           = "NO_COLOR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		OCR: OCR{
			Backend:     defaultBackend,
			Concurrency: defaultConcurrency,
		},
		Ollama: Ollama{
			Model:          defaultOllamaModel,
			TimeoutSeconds: defaultOllamaTimeout,
		},
		HTTP: HTTP{
			TextField:      defaultHTTPTextField,
			TimeoutSeconds: defaultHTTPTimeout,
		},
		Tesseract: Tesseract{
			Languages: []string{"eng"},
		},
		Cache: Cache{
			Enabled: false,
			Driver:  defaultCacheDriver,
			Path:    defaultCachePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
