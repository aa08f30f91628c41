// Package services defines shared utilities consumed by the job orchestrator,
// the engine adapters, and the outer surfaces.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so every failure can be
//     classified into the job error taxonomy (invalid input, engine load,
//     step failure, artifact namespace violations).
//
// Use these helpers when wiring new pipeline logic so error classification and
// observability stay uniform.
package services
