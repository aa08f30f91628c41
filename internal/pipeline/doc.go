// Package pipeline turns a job request into the ordered list of engine steps
// that implement it.
//
// A stitch becomes two stream-copy trims of the base clip around the cut point
// followed by a stream-copy concat of part1, target, and part2. A compress
// becomes a single transcode at a fixed quality factor and output resolution.
// Steps run strictly in order because each consumes earlier outputs.
//
// The preset tables (quality factors and resolutions) live here too so the CLI,
// the HTTP surface, and the engine adapters agree on the same values.
package pipeline
