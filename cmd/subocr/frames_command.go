package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bdougie/subocr/internal/extractor"
	"github.com/bdougie/subocr/internal/pipeline"
	"github.com/bdougie/subocr/internal/timecode"
)

func newFramesCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "List the frames a run would recognize and their cue timing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := extractor.ListFrames(dir)
			if err != nil {
				return err
			}
			if len(frames) == 0 {
				return fmt.Errorf("%w in '%s'", pipeline.ErrNoFrames, dir)
			}

			rows := make([][]string, 0, len(frames))
			untimed := 0
			for _, frame := range frames {
				start, end, ok := timecode.Parse(frame.Name)
				if !ok {
					untimed++
					rows = append(rows, []string{strconv.Itoa(frame.Index), frame.Name, "-", "-", "-", "dropped: no timecode"})
					continue
				}
				rows = append(rows, []string{
					strconv.Itoa(frame.Index),
					frame.Name,
					start.String(),
					end.String(),
					length(start, end),
					status(start, end),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Frame", "Start", "End", "Length", "Status"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d frames, %d without timecode\n", len(frames), untimed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "path", "p", "", "Directory containing subtitle images")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

// status flags cues that end before they start; they are still emitted.
func status(start, end timecode.Timecode) string {
	if end.Duration() < start.Duration() {
		return "ok (ends before start)"
	}
	return "ok"
}

func length(start, end timecode.Timecode) string {
	if start.Duration() == timecode.MaxDuration || end.Duration() == timecode.MaxDuration {
		return "-"
	}
	return (end.Duration() - start.Duration()).String()
}
