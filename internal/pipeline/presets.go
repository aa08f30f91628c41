package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"splicer/internal/services"
)

// Quality is a user-facing quality preset bound to an encoder quality factor.
// A higher factor compresses harder, so High has the lowest factor.
type Quality struct {
	Name   string `json:"name"`
	Factor int    `json:"factor"`
}

var (
	QualityHigh   = Quality{Name: "High", Factor: 28}
	QualityMedium = Quality{Name: "Medium", Factor: 30}
	QualityLow    = Quality{Name: "Low", Factor: 32}
)

// Qualities lists the supported quality presets from best to smallest output.
func Qualities() []Quality {
	return []Quality{QualityHigh, QualityMedium, QualityLow}
}

func (q Quality) String() string {
	return fmt.Sprintf("%s (%d)", q.Name, q.Factor)
}

// IsZero reports whether q was left unset.
func (q Quality) IsZero() bool {
	return q == Quality{}
}

// newFolder returns a case folder for one parse call. A Caser carries
// transform state, so callers must not share it between goroutines.
func newFolder() func(string) string {
	caser := cases.Fold()
	return caser.String
}

// ParseQuality accepts a preset name (case-insensitive) or its numeric factor.
func ParseQuality(value string) (Quality, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Quality{}, services.Wrap(services.ErrInvalidInput, "presets", "parse quality", "quality is required", nil)
	}
	if factor, err := strconv.Atoi(trimmed); err == nil {
		for _, q := range Qualities() {
			if q.Factor == factor {
				return q, nil
			}
		}
		return Quality{}, services.Wrap(services.ErrInvalidInput, "presets", "parse quality", fmt.Sprintf("unsupported quality factor %d", factor), nil)
	}
	fold := newFolder()
	wanted := fold(trimmed)
	for _, q := range Qualities() {
		if fold(q.Name) == wanted {
			return q, nil
		}
	}
	return Quality{}, services.Wrap(services.ErrInvalidInput, "presets", "parse quality", fmt.Sprintf("unsupported quality %q", trimmed), nil)
}

// Resolution is one of the fixed output frame sizes.
type Resolution struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

var (
	Resolution360p  = Resolution{Width: 640, Height: 360, Label: "360p"}
	Resolution480p  = Resolution{Width: 854, Height: 480, Label: "480p"}
	Resolution720p  = Resolution{Width: 1280, Height: 720, Label: "720p"}
	Resolution1080p = Resolution{Width: 1920, Height: 1080, Label: "1080p"}
	Resolution1440p = Resolution{Width: 2560, Height: 1440, Label: "1440p"}
	Resolution2160p = Resolution{Width: 3840, Height: 2160, Label: "4K"}
)

// Resolutions lists the supported output sizes from smallest to largest.
func Resolutions() []Resolution {
	return []Resolution{
		Resolution360p,
		Resolution480p,
		Resolution720p,
		Resolution1080p,
		Resolution1440p,
		Resolution2160p,
	}
}

// String renders the WxH form handed to the engine.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Display renders the label shown in pickers, e.g. "720p (1280x720)".
func (r Resolution) Display() string {
	return fmt.Sprintf("%s (%s)", r.Label, r.String())
}

// IsZero reports whether r was left unset.
func (r Resolution) IsZero() bool {
	return r == Resolution{}
}

// ParseResolution accepts "WxH" (also with "×" or "X") or a preset label such
// as "720p" or "4K". Only preset sizes are accepted.
func ParseResolution(value string) (Resolution, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Resolution{}, services.Wrap(services.ErrInvalidInput, "presets", "parse resolution", "resolution is required", nil)
	}
	normalized := strings.NewReplacer("×", "x", "X", "x", " ", "").Replace(trimmed)
	fold := newFolder()
	wanted := fold(normalized)
	for _, r := range Resolutions() {
		if r.String() == normalized || fold(r.Label) == wanted {
			return r, nil
		}
	}
	return Resolution{}, services.Wrap(services.ErrInvalidInput, "presets", "parse resolution", fmt.Sprintf("unsupported resolution %q", trimmed), nil)
}
