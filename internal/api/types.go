package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes the current job in a transport-friendly format.
type Job struct {
	ID         string     `json:"id,omitempty"`
	Generation uint64     `json:"generation"`
	Kind       string     `json:"kind,omitempty"`
	State      string     `json:"state"`
	StepIndex  int        `json:"stepIndex"`
	StepCount  int        `json:"stepCount"`
	Steps      []Step     `json:"steps,omitempty"`
	Spec       *Spec      `json:"spec,omitempty"`
	Progress   Progress   `json:"progress"`
	Result     *Result    `json:"result,omitempty"`
	Error      *JobError  `json:"error,omitempty"`
	Artifacts  []Artifact `json:"artifacts,omitempty"`
	CreatedAt  string     `json:"createdAt,omitempty"`
	StartedAt  string     `json:"startedAt,omitempty"`
	FinishedAt string     `json:"finishedAt,omitempty"`
}

// Step describes one pipeline operation.
type Step struct {
	Kind        string   `json:"kind"`
	Inputs      []string `json:"inputs"`
	Output      string   `json:"output"`
	Description string   `json:"description"`
}

// Spec mirrors the transcode parameters of a job.
type Spec struct {
	CutSeconds    float64 `json:"cutSeconds,omitempty"`
	CutDisplay    string  `json:"cutDisplay,omitempty"`
	Quality       string  `json:"quality,omitempty"`
	QualityFactor int     `json:"qualityFactor,omitempty"`
	Resolution    string  `json:"resolution,omitempty"`
}

// Progress reports the active step's completion.
type Progress struct {
	Percent    int      `json:"percent"`
	ETASeconds *float64 `json:"etaSeconds"`
	ETA        string   `json:"eta"`
}

// Result describes the downloadable output.
type Result struct {
	Name        string `json:"name"`
	MIMEType    string `json:"mimeType"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// JobError describes a failed job.
type JobError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Step    int    `json:"step,omitempty"`
}

// Artifact is an entry in the engine namespace.
type Artifact struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Size int64  `json:"size"`
}

// SubmitJobRequest is the body of POST /api/jobs. CutSeconds wins over Scrub
// when both are set.
type SubmitJobRequest struct {
	Kind       string   `json:"kind"`
	CutSeconds *float64 `json:"cutSeconds,omitempty"`
	Scrub      *float64 `json:"scrub,omitempty"`
	Quality    string   `json:"quality,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
}

// MediaInfo describes a selected input clip.
type MediaInfo struct {
	Role            string  `json:"role"`
	Name            string  `json:"name"`
	Size            int64   `json:"size"`
	Duration        float64 `json:"duration"`
	DurationDisplay string  `json:"durationDisplay"`
	Ready           bool    `json:"ready"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	Codec           string  `json:"codec,omitempty"`
	HasAudio        bool    `json:"hasAudio"`
}

// InputsResponse lists the selected inputs.
type InputsResponse struct {
	Base   *MediaInfo `json:"base,omitempty"`
	Target *MediaInfo `json:"target,omitempty"`
}

// TimecodeResponse converts a scrub position into seconds and a display.
type TimecodeResponse struct {
	Scrub   float64 `json:"scrub"`
	Seconds float64 `json:"seconds"`
	Display string  `json:"display"`
}

// QualityPreset is one selectable quality.
type QualityPreset struct {
	Name   string `json:"name"`
	Factor int    `json:"factor"`
}

// ResolutionPreset is one selectable output size.
type ResolutionPreset struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PresetsResponse lists the presets and configured defaults.
type PresetsResponse struct {
	Qualities         []QualityPreset    `json:"qualities"`
	Resolutions       []ResolutionPreset `json:"resolutions"`
	DefaultQuality    string             `json:"defaultQuality"`
	DefaultResolution string             `json:"defaultResolution"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult mirrors a preflight result.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	JobState string `json:"jobState"`
}
