package ocr

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ScopeHash condenses the settings that shape a backend's output (prompt,
// reply field, language) into a short tag for its Name, so cached text is
// never served across a settings change.
func ScopeHash(settings ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(settings, "\x00")))
	return hex.EncodeToString(sum[:4])
}
