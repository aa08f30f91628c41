// Package timecode converts between normalized scrub positions, absolute
// seconds, and the "M:S:CC" display form used by the scrub slider.
//
// Conversions truncate with floor rather than rounding so displayed values
// match the playback widget frame for frame. Unknown or unready durations never
// fault; they produce the Unready sentinel instead.
package timecode
