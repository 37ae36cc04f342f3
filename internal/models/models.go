package models

import "github.com/bdougie/subocr/internal/timecode"

// Frame represents a subtitle image waiting to be recognized
type Frame struct {
	Name  string // base filename, carries the timecodes
	Path  string
	Index int // 1-based position in enumeration order
	Total int
}

// Recognition represents the OCR outcome for a single frame
type Recognition struct {
	Frame  Frame
	Text   string
	Err    error `json:"-"`
	Cached bool
}

// Failed reports whether the backend call for this frame failed
func (r Recognition) Failed() bool {
	return r.Err != nil
}

// Entry is one numbered caption in the output file
type Entry struct {
	Index int
	Start timecode.Timecode
	End   timecode.Timecode
	Text  string
}
