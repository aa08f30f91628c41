// Package jobs runs stitch and compress jobs against an engine.
//
// A Manager owns at most one job at a time. Submit validates the request,
// builds the step pipeline and hands it to a background run that executes
// steps strictly in order, converting engine progress into percent and ETA.
// Every state change is published to subscribers as a Job snapshot. Reset
// abandons the current job: a generation counter makes the abandoned run's
// late events invisible and its artifacts are released.
//
// Each job gets its own artifact store over the engine namespace. When a job
// ends, inputs and intermediates are released; a succeeded job keeps its
// output until the next Submit or Reset.
package jobs
