package api

import (
	"time"

	"splicer/internal/artifact"
	"splicer/internal/deps"
	"splicer/internal/jobs"
	"splicer/internal/pipeline"
	"splicer/internal/preflight"
	"splicer/internal/timecode"
)

// FromJob converts a job snapshot to its API representation.
func FromJob(job jobs.Job) Job {
	dto := Job{
		ID:         job.ID,
		Generation: job.Generation,
		Kind:       string(job.Kind),
		State:      string(job.State),
		StepIndex:  job.StepIndex,
		StepCount:  job.StepCount(),
		Progress:   fromProgress(job),
		CreatedAt:  formatTime(job.CreatedAt),
		StartedAt:  formatTime(job.StartedAt),
		FinishedAt: formatTime(job.FinishedAt),
	}
	if job.ID != "" {
		dto.Spec = fromSpec(job.Kind, job.Spec)
	}
	for _, step := range job.Steps {
		dto.Steps = append(dto.Steps, Step{
			Kind:        string(step.Kind),
			Inputs:      append([]string(nil), step.Inputs...),
			Output:      step.Output,
			Description: step.String(),
		})
	}
	if job.Result != nil {
		dto.Result = &Result{
			Name:     job.Result.Name,
			MIMEType: job.Result.MIMEType,
			Size:     job.Result.Size,
		}
	}
	if job.Error != nil {
		dto.Error = &JobError{
			Kind:    string(job.Error.Kind),
			Message: job.Error.Message,
			Step:    job.Error.Step,
		}
	}
	return dto
}

func fromProgress(job jobs.Job) Progress {
	p := Progress{Percent: job.Progress.Percent, ETA: job.Progress.ETADisplay}
	if p.ETA == "" {
		p.ETA = "unknown"
	}
	if job.Progress.ETAKnown {
		eta := job.Progress.ETASeconds
		p.ETASeconds = &eta
	}
	return p
}

func fromSpec(kind pipeline.Kind, spec pipeline.TranscodeSpec) *Spec {
	switch kind {
	case pipeline.KindStitch:
		return &Spec{CutSeconds: spec.CutSeconds, CutDisplay: timecode.ToDisplay(spec.CutSeconds)}
	case pipeline.KindCompress:
		return &Spec{
			Quality:       spec.Quality.Name,
			QualityFactor: spec.Quality.Factor,
			Resolution:    spec.Resolution.String(),
		}
	default:
		return nil
	}
}

// FromArtifacts converts store entries.
func FromArtifacts(list []artifact.Artifact) []Artifact {
	if len(list) == 0 {
		return nil
	}
	out := make([]Artifact, 0, len(list))
	for _, a := range list {
		out = append(out, Artifact{Name: a.Name, Role: string(a.Role), Size: a.Size})
	}
	return out
}

// FromPresets lists the quality and resolution presets with the given
// defaults.
func FromPresets(defaultQuality pipeline.Quality, defaultResolution pipeline.Resolution) PresetsResponse {
	resp := PresetsResponse{
		DefaultQuality:    defaultQuality.Name,
		DefaultResolution: defaultResolution.String(),
	}
	for _, q := range pipeline.Qualities() {
		resp.Qualities = append(resp.Qualities, QualityPreset{Name: q.Name, Factor: q.Factor})
	}
	for _, r := range pipeline.Resolutions() {
		resp.Resolutions = append(resp.Resolutions, ResolutionPreset{
			Value:  r.String(),
			Label:  r.Label,
			Width:  r.Width,
			Height: r.Height,
		})
	}
	return resp
}

// FromTimecode converts a scrub position for a clip of duration seconds.
func FromTimecode(scrub, duration float64) TimecodeResponse {
	resp := TimecodeResponse{Scrub: scrub, Display: timecode.Display(scrub, duration)}
	if timecode.Ready(duration) {
		resp.Seconds = timecode.ToSeconds(scrub, duration)
	}
	return resp
}

// FromDependencies converts dependency statuses.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, DependencyStatus{
			Name:        s.Name,
			Command:     s.Command,
			Description: s.Description,
			Optional:    s.Optional,
			Available:   s.Available,
			Detail:      s.Detail,
		})
	}
	return out
}

// FromChecks converts preflight results.
func FromChecks(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
