package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"splicer/internal/api"
	"splicer/internal/deps"
	"splicer/internal/preflight"
)

type checkReport struct {
	Checks       []api.CheckResult      `json:"checks"`
	Dependencies []api.DependencyStatus `json:"dependencies"`
	Versions     map[string]string      `json:"versions,omitempty"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the workspace and media tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			report := checkReport{
				Checks:       api.FromChecks(results),
				Dependencies: api.FromDependencies(statuses),
				Versions:     make(map[string]string),
			}
			for _, status := range statuses {
				if !status.Available {
					continue
				}
				if version, err := deps.ToolVersion(cmd.Context(), status.Command); err == nil {
					report.Versions[status.Name] = version
				}
			}

			failed := preflight.Failed(results)
			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printCheckReport(cmd, report)
			}
			if len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, f := range failed {
					names = append(names, f.Name)
				}
				return fmt.Errorf("%d check(s) failed: %s", len(failed), strings.Join(names, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func printCheckReport(cmd *cobra.Command, report checkReport) {
	out := cmd.OutOrStdout()
	colorize := isTerminal(out)

	for _, line := range renderSectionHeader("Workspace", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, check := range report.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Media tools", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, dep := range report.Dependencies {
		kind := statusOK
		message := dep.Command
		if version, ok := report.Versions[dep.Name]; ok {
			message = version
		}
		if !dep.Available {
			kind = statusError
			if dep.Optional {
				kind = statusWarn
			}
			message = dep.Detail
		}
		label := dep.Name
		if dep.Optional {
			label += " (optional)"
		}
		fmt.Fprintln(out, renderStatusLine(label, kind, message, colorize))
	}
}
