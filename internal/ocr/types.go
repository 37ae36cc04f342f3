package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TextField is the key structured responses carry their recognized text under.
const TextField = "ocr_text"

var (
	// ErrMalformedResponse marks a response whose shape cannot be turned into text.
	ErrMalformedResponse = errors.New("malformed ocr response")
	// ErrEmptyResponse marks a backend reply with no payload at all.
	ErrEmptyResponse = errors.New("empty ocr response")
)

// Backend is the recognition service contract: one image path in, one
// response out. Implementations may be remote and unreliable; callers treat
// every error as a per-image failure.
type Backend interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (Response, error)
}

// Response is the raw reply of a backend. It is either structured, with the
// text stored under a named field, or a plain value that is coerced to text.
type Response struct {
	// Fields holds a structured payload. When non-nil it takes precedence over Raw.
	Fields map[string]any
	// TextKey overrides TextField for structured payloads.
	TextKey string
	// Raw is any other value returned by the backend.
	Raw any
}

// Structured wraps a decoded object payload.
func Structured(fields map[string]any) Response {
	if fields == nil {
		fields = map[string]any{}
	}
	return Response{Fields: fields}
}

// Plain wraps a non-structured payload.
func Plain(v any) Response {
	return Response{Raw: v}
}

// Text extracts the recognized text. A structured payload without the text
// field yields an empty string; one whose text field is not a string is
// malformed.
func (r Response) Text() (string, error) {
	if r.Fields != nil {
		key := r.TextKey
		if key == "" {
			key = TextField
		}
		v, ok := r.Fields[key]
		if !ok || v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%w: field %q is %T", ErrMalformedResponse, key, v)
		}
		return s, nil
	}
	switch v := r.Raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// DecodeResponse builds a Response from a payload: a JSON object becomes a
// structured response, anything else is kept as raw text. A payload shaped
// like an object that does not decode is malformed, never caption text.
func DecodeResponse(body []byte) (Response, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return Response{}, ErrEmptyResponse
	}
	if strings.HasPrefix(trimmed, "{") {
		var fields map[string]any
		if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return Structured(fields), nil
	}
	return Plain(trimmed), nil
}
