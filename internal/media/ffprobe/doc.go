// Package ffprobe inspects clips with ffprobe to learn their duration and
// stream layout.
//
// Inspect runs ffprobe against a file path; InspectBytes spools an
// in-memory upload to a temporary file first. Result helpers pick the
// duration from the container and fall back to the longest video stream
// when the container does not report one.
package ffprobe
