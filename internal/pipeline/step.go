package pipeline

import (
	"fmt"
	"strings"

	"splicer/internal/services"
)

// Kind identifies the job flavour a pipeline implements.
type Kind string

const (
	KindStitch   Kind = "stitch"
	KindCompress Kind = "compress"
)

// ParseKind validates a job kind string.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindStitch:
		return KindStitch, nil
	case KindCompress:
		return KindCompress, nil
	default:
		return "", services.Wrap(services.ErrInvalidInput, "pipeline", "parse kind", fmt.Sprintf("unsupported job kind %q", value), nil)
	}
}

// StepKind identifies the engine operation a step performs.
type StepKind string

const (
	StepTrim      StepKind = "trim"
	StepConcat    StepKind = "concat"
	StepTranscode StepKind = "transcode"
)

// Artifact names used inside a job namespace.
const (
	BaseName       = "base.mp4"
	TargetName     = "target.mp4"
	Part1Name      = "part1.mp4"
	Part2Name      = "part2.mp4"
	StitchedName   = "stitched.mp4"
	CompressedName = "compressed.mp4"

	// MIMEType tags every produced output.
	MIMEType = "video/mp4"
)

// OutputName returns the final artifact name for a job kind.
func OutputName(kind Kind) string {
	if kind == KindStitch {
		return StitchedName
	}
	return CompressedName
}

// Params carries the operation arguments for a step. Only the fields relevant
// to the step kind are set.
type Params struct {
	// Start and End bound a trim range in seconds.
	Start float64 `json:"start,omitempty"`
	End   float64 `json:"end,omitempty"`
	// Quality is the encoder quality factor for transcodes.
	Quality int `json:"quality,omitempty"`
	// Resolution is the WxH output size for transcodes.
	Resolution string `json:"resolution,omitempty"`
	// ExpectedDuration is the length in seconds of the media the step
	// produces; 0 when unknown. Engines use it to derive progress fractions.
	ExpectedDuration float64 `json:"expected_duration,omitempty"`
}

// Step is one operation against the engine.
type Step struct {
	Kind   StepKind `json:"kind"`
	Inputs []string `json:"inputs"`
	Output string   `json:"output"`
	Params Params   `json:"params"`
}

func (s Step) String() string {
	inputs := strings.Join(s.Inputs, ", ")
	switch s.Kind {
	case StepTrim:
		return fmt.Sprintf("trim(%s, %.2f, %.2f) -> %s", inputs, s.Params.Start, s.Params.End, s.Output)
	case StepTranscode:
		return fmt.Sprintf("transcode(%s, q=%d, %s) -> %s", inputs, s.Params.Quality, s.Params.Resolution, s.Output)
	default:
		return fmt.Sprintf("%s([%s]) -> %s", s.Kind, inputs, s.Output)
	}
}

// Intermediates returns the step outputs other than the final one.
func Intermediates(steps []Step) []string {
	if len(steps) < 2 {
		return nil
	}
	names := make([]string, 0, len(steps)-1)
	for _, step := range steps[:len(steps)-1] {
		names = append(names, step.Output)
	}
	return names
}
