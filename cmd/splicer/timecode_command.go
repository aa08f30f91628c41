package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"splicer/internal/api"
	"splicer/internal/timecode"
)

func newTimecodeCommand() *cobra.Command {
	var duration, scrub, seconds float64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "timecode",
		Short:       "Convert a scrub position into a cut timestamp",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seconds") {
				scrub = timecode.ToScrub(seconds, duration)
			}
			if math.IsNaN(scrub) || scrub < 0 || scrub > timecode.ScrubMax {
				return fmt.Errorf("scrub must be in [0, %d], got %g", timecode.ScrubMax, scrub)
			}
			resp := api.FromTimecode(scrub, duration)
			if jsonOut {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scrub: %.2f\n", resp.Scrub)
			fmt.Fprintf(out, "Seconds: %.3f\n", resp.Seconds)
			fmt.Fprintf(out, "Display: %s\n", resp.Display)
			return nil
		},
	}
	cmd.Flags().Float64Var(&duration, "duration", 0, "Clip duration in seconds")
	cmd.Flags().Float64Var(&scrub, "scrub", 0, "Position in [0, 100]")
	cmd.Flags().Float64Var(&seconds, "seconds", 0, "Absolute time to convert back into a scrub position")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	cmd.MarkFlagsMutuallyExclusive("scrub", "seconds")
	return cmd
}
