// Package preflight provides readiness checks for the binaries and
// filesystem paths splicer depends on.
//
// `splicer check` prints every result and exits non-zero when one fails.
// `splicer serve` runs the same checks at startup and logs failures as
// warnings, since the engine load reports a missing ffmpeg on the first job.
// WorkspaceSpaceCheck is also run by the job manager before each job writes
// its inputs.
package preflight
