// Command subocr converts a directory of timestamped subtitle frames into an
// SRT file by running every frame through an OCR backend.
//
// Frame names carry the cue timing:
//
//	0_00_01_000__0_00_02_500.png -> 00:00:01,000 --> 00:00:02,500
package main
