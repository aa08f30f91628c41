package pipeline

import (
	"fmt"
	"math"
	"strings"

	"splicer/internal/services"
)

// TranscodeSpec holds the user-chosen parameters of a job. It is copied by
// value into the job, so it cannot change once the job starts.
type TranscodeSpec struct {
	// CutSeconds is the insertion point for stitch jobs.
	CutSeconds float64    `json:"cut_seconds"`
	Quality    Quality    `json:"quality"`
	Resolution Resolution `json:"resolution"`
}

// Validate checks the TranscodeSpec bounds for the given job kind. baseDuration is the
// base clip length in seconds; stitch jobs need it to be known.
func (s TranscodeSpec) Validate(kind Kind, baseDuration float64) error {
	switch kind {
	case KindStitch:
		if baseDuration <= 0 || math.IsNaN(baseDuration) || math.IsInf(baseDuration, 0) {
			return services.Wrap(services.ErrInvalidInput, "validate", "stitch", "base duration is unknown", nil)
		}
		if math.IsNaN(s.CutSeconds) || s.CutSeconds < 0 || s.CutSeconds > baseDuration {
			return services.Wrap(services.ErrInvalidInput, "validate", "stitch",
				fmt.Sprintf("cut timestamp %.3fs outside [0, %.3f]", s.CutSeconds, baseDuration), nil)
		}
	case KindCompress:
		if !knownQuality(s.Quality) {
			return services.Wrap(services.ErrInvalidInput, "validate", "compress", fmt.Sprintf("unsupported quality %v", s.Quality), nil)
		}
		if !knownResolution(s.Resolution) {
			return services.Wrap(services.ErrInvalidInput, "validate", "compress", fmt.Sprintf("unsupported resolution %q", s.Resolution.String()), nil)
		}
	default:
		return services.Wrap(services.ErrInvalidInput, "validate", "", fmt.Sprintf("unsupported job kind %q", kind), nil)
	}
	return nil
}

// Build constructs the pipeline for a job kind.
func Build(kind Kind, baseDuration, targetDuration float64, spec TranscodeSpec) ([]Step, error) {
	switch kind {
	case KindStitch:
		return BuildStitch(baseDuration, targetDuration, spec)
	case KindCompress:
		return BuildCompress(baseDuration, spec)
	default:
		return nil, services.Wrap(services.ErrInvalidInput, "pipeline", "build", fmt.Sprintf("unsupported job kind %q", kind), nil)
	}
}

// BuildStitch splits the base clip at the cut point and concatenates
// part1, target, part2. A cut at 0 or at the full duration still produces
// three steps; the empty segment is passed through to the concat.
func BuildStitch(baseDuration, targetDuration float64, spec TranscodeSpec) ([]Step, error) {
	if err := spec.Validate(KindStitch, baseDuration); err != nil {
		return nil, err
	}
	cut := spec.CutSeconds
	concatDuration := 0.0
	if targetDuration > 0 {
		concatDuration = baseDuration + targetDuration
	}
	return []Step{
		{
			Kind:   StepTrim,
			Inputs: []string{BaseName},
			Output: Part1Name,
			Params: Params{Start: 0, End: cut, ExpectedDuration: cut},
		},
		{
			Kind:   StepTrim,
			Inputs: []string{BaseName},
			Output: Part2Name,
			Params: Params{Start: cut, End: baseDuration, ExpectedDuration: baseDuration - cut},
		},
		{
			Kind:   StepConcat,
			Inputs: []string{Part1Name, TargetName, Part2Name},
			Output: StitchedName,
			Params: Params{ExpectedDuration: concatDuration},
		},
	}, nil
}

// BuildCompress produces the single transcode step. The output is resized to
// the preset dimensions regardless of the source aspect ratio.
func BuildCompress(baseDuration float64, spec TranscodeSpec) ([]Step, error) {
	if err := spec.Validate(KindCompress, baseDuration); err != nil {
		return nil, err
	}
	expected := baseDuration
	if expected < 0 || math.IsNaN(expected) || math.IsInf(expected, 0) {
		expected = 0
	}
	return []Step{
		{
			Kind:   StepTranscode,
			Inputs: []string{BaseName},
			Output: CompressedName,
			Params: Params{
				Quality:          spec.Quality.Factor,
				Resolution:       spec.Resolution.String(),
				ExpectedDuration: expected,
			},
		},
	}, nil
}

func knownQuality(q Quality) bool {
	for _, candidate := range Qualities() {
		if candidate.Factor == q.Factor {
			return true
		}
	}
	return false
}

func knownResolution(r Resolution) bool {
	for _, candidate := range Resolutions() {
		if candidate.Width == r.Width && candidate.Height == r.Height {
			return true
		}
	}
	return false
}

// ParseSpec builds a spec from user-facing values. Compress jobs fall back to
// the given defaults when quality or resolution is blank; stitch jobs only
// use cutSeconds.
func ParseSpec(kind Kind, cutSeconds float64, quality, resolution, defaultQuality, defaultResolution string) (TranscodeSpec, error) {
	switch kind {
	case KindStitch:
		return TranscodeSpec{CutSeconds: cutSeconds}, nil
	case KindCompress:
		if strings.TrimSpace(quality) == "" {
			quality = defaultQuality
		}
		if strings.TrimSpace(resolution) == "" {
			resolution = defaultResolution
		}
		q, err := ParseQuality(quality)
		if err != nil {
			return TranscodeSpec{}, err
		}
		r, err := ParseResolution(resolution)
		if err != nil {
			return TranscodeSpec{}, err
		}
		return TranscodeSpec{Quality: q, Resolution: r}, nil
	default:
		return TranscodeSpec{}, services.Wrap(services.ErrInvalidInput, "pipeline", "parse spec", fmt.Sprintf("unsupported job kind %q", kind), nil)
	}
}
