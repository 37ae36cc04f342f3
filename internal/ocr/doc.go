// Package ocr defines the contract between the subtitle pipeline and the
// recognition services that read frame images. Backends live in subpackages
// (ollama, httpocr, tesseract) and all return a Response that is normalized
// here into a single caption line.
package ocr
