// Command splicer stitches and compresses video clips with ffmpeg.
//
// `splicer stitch` inserts a target clip into a base clip at a cut point
// (trim, trim, then concat). `splicer compress` re-encodes a clip at a preset
// quality and resolution. `splicer serve` exposes the same job manager over
// HTTP with a websocket progress stream. Supporting commands convert scrub
// positions to timecodes, list presets and check the environment.
package main
