// Package subtitles assembles recognized frames into numbered SRT entries and
// writes them out.
package subtitles
