// Package config loads, normalizes, and validates splicer configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as SPLICER_NTFY_TOPIC.
// The Config type gathers the workspace directory, the ffmpeg toolchain
// settings, job presets and logging knobs so the CLI and the HTTP server see
// the same sanitized values.
package config
