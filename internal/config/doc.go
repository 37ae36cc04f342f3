// Package config loads subocr settings from TOML, applies defaults and
// validates them. CLI flags are layered on top by the caller.
package config
