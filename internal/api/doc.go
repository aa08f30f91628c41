// Package api defines wire-format types and converters for the HTTP surface
// served by `splicer serve` and for the CLI's --json output.
//
// DTOs use camelCase JSON tags for browser consumers. Enums (job state, error
// kind, step kind) are exposed as lowercase strings. Timestamps use RFC3339
// with milliseconds. An unknown ETA is encoded as a null etaSeconds and the
// display string "unknown".
package api
