package preflight

import (
	"context"
	"strings"

	"splicer/internal/config"
	"splicer/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the workspace checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckFreeSpace("Work directory space", cfg.Paths.WorkDir, uint64(max(cfg.Engine.MinFreeMiB, 0))<<20),
	}
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		if status.Optional {
			continue
		}
		detail := status.Command
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// WorkspaceSpaceCheck returns a check that fails with an engine load error
// when the work directory has less than engine.min_free_mib available. Job
// managers run it before writing a job's inputs.
func WorkspaceSpaceCheck(cfg *config.Config) func(context.Context) error {
	minBytes := uint64(max(cfg.Engine.MinFreeMiB, 0)) << 20
	workDir := cfg.Paths.WorkDir
	return func(context.Context) error {
		result := CheckFreeSpace("Work directory space", workDir, minBytes)
		if result.Passed {
			return nil
		}
		return services.Wrap(services.ErrEngineLoad, "preflight", "free space",
			"workspace is short on space: "+result.Detail, nil)
	}
}
