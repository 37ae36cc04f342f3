// Package timecode reads the start/end pair encoded in subtitle frame names.
//
// Frame names follow the `<h>_<m>_<s>_<ms>__<h>_<m>_<s>_<ms>` convention used by
// subtitle extractors, e.g. `0_01_02_345__0_01_04_000.png`. Anything after the
// second group is ignored. Field ranges are not validated: `0_75_00_000` is read
// as 75 minutes and printed as such.
package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var framePattern = regexp.MustCompile(`^(\d+)_(\d+)_(\d+)_(\d+)__(\d+)_(\d+)_(\d+)_(\d+)`)

// Timecode is a playback position split into its SRT fields.
type Timecode struct {
	Hours   int
	Minutes int
	Seconds int
	Millis  int
}

// String renders the timecode as HH:MM:SS,mmm.
func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d,%03d", t.Hours, t.Minutes, t.Seconds, t.Millis)
}

// MaxDuration is what Duration returns for timecodes past the time.Duration range.
const MaxDuration = time.Duration(math.MaxInt64)

// Duration converts the timecode to an offset from the start of playback,
// saturating at MaxDuration.
func (t Timecode) Duration() time.Duration {
	parts := [...]struct {
		n    int
		unit time.Duration
	}{
		{t.Hours, time.Hour},
		{t.Minutes, time.Minute},
		{t.Seconds, time.Second},
		{t.Millis, time.Millisecond},
	}
	var d time.Duration
	for _, p := range parts {
		if p.n < 0 || int64(p.n) > int64(MaxDuration-d)/int64(p.unit) {
			return MaxDuration
		}
		d += time.Duration(p.n) * p.unit
	}
	return d
}

// Parse extracts the start and end timecodes from a frame filename. ok is false
// when the name does not start with the two timecode groups.
func Parse(name string) (start, end Timecode, ok bool) {
	m := framePattern.FindStringSubmatch(name)
	if m == nil {
		return Timecode{}, Timecode{}, false
	}
	fields := make([]int, 8)
	for i := range fields {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			// digit run wider than int
			return Timecode{}, Timecode{}, false
		}
		fields[i] = v
	}
	start = Timecode{Hours: fields[0], Minutes: fields[1], Seconds: fields[2], Millis: fields[3]}
	end = Timecode{Hours: fields[4], Minutes: fields[5], Seconds: fields[6], Millis: fields[7]}
	return start, end, true
}
