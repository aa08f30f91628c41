package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"splicer/internal/api"
	"splicer/internal/pipeline"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List quality and resolution presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			quality, err := pipeline.ParseQuality(cfg.Defaults.Quality)
			if err != nil {
				return fmt.Errorf("default quality: %w", err)
			}
			resolution, err := pipeline.ParseResolution(cfg.Defaults.Resolution)
			if err != nil {
				return fmt.Errorf("default resolution: %w", err)
			}
			resp := api.FromPresets(quality, resolution)
			if jsonOut {
				return writeJSON(cmd, resp)
			}

			qualityRows := make([][]string, 0, len(resp.Qualities))
			for _, q := range resp.Qualities {
				qualityRows = append(qualityRows, []string{q.Name, strconv.Itoa(q.Factor), defaultMark(q.Name == resp.DefaultQuality)})
			}
			resolutionRows := make([][]string, 0, len(resp.Resolutions))
			for _, r := range resp.Resolutions {
				resolutionRows = append(resolutionRows, []string{r.Label, r.Value, defaultMark(r.Value == resp.DefaultResolution)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable("Quality", []string{"Preset", "CRF", "Default"}, qualityRows,
				[]columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintln(out, renderTable("Resolution", []string{"Label", "Size", "Default"}, resolutionRows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func defaultMark(isDefault bool) string {
	if isDefault {
		return "*"
	}
	return ""
}
