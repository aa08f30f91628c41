// Package server exposes the job manager over HTTP for `splicer serve`.
//
// Routes are registered on a gorilla/mux router. The server holds the two
// selected input clips in memory, submits jobs to a single jobs.Manager and
// streams job snapshots to browsers over a websocket. Every request passes
// through request-ID and Prometheus middleware; /metrics and /healthz are
// excluded from the HTTP metrics.
package server
