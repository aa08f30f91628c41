// Package metrics exposes Prometheus collectors for splicer.
//
// Collectors are registered on the default registry at init and served by
// the /metrics endpoint of the HTTP server.
//
// Job metrics:
//   - JobsSubmitted: jobs accepted by kind
//   - JobsRejected: submissions refused by kind and reason
//   - JobsFinished: terminal jobs by kind and state
//   - JobDuration: wall-clock job duration by kind
//   - JobActive: 1 while a job is between submission and a terminal state
//   - JobProgressPercent: percent of the current step
//
// Step metrics:
//   - StepDuration: engine operation duration by step kind and result
//
// Artifact metrics:
//   - ArtifactBytes: bytes written into the engine namespace by role
//   - ArtifactsReleased: artifacts deleted from the namespace
//
// HTTP metrics:
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
package metrics
