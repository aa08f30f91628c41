// Package ffmpeg implements engine.Engine on top of the ffmpeg CLI.
//
// The namespace is a workspace directory guarded by an exclusive file lock,
// so two processes never share one set of artifacts. Each Operation becomes
// one ffmpeg invocation run with "-progress pipe:1"; the key/value progress
// blocks on stdout drive EventProgress and stderr lines are forwarded as
// EventLog. A failed invocation removes its partial output.
package ffmpeg
