package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"splicer/internal/api"
	"splicer/internal/jobs"
	"splicer/internal/logging"
	"splicer/internal/pipeline"
	"splicer/internal/timecode"
)

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	kind, err := pipeline.ParseKind(req.Kind)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	base := s.handle(roleBase)
	var target *jobs.MediaHandle
	if kind == pipeline.KindStitch {
		target = s.handle(roleTarget)
	}

	cut := 0.0
	switch {
	case req.CutSeconds != nil:
		cut = *req.CutSeconds
	case req.Scrub != nil:
		if base != nil {
			cut = timecode.ToSeconds(*req.Scrub, base.Duration)
		}
	}
	spec, err := pipeline.ParseSpec(kind, cut, req.Quality, req.Resolution,
		s.cfg.Defaults.Quality, s.cfg.Defaults.Resolution)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	job, err := s.manager.Submit(r.Context(), jobs.Request{
		Kind:   kind,
		Spec:   spec,
		Base:   base,
		Target: target,
	})
	if err != nil {
		logging.WithContext(r.Context(), s.logger).Info("job submission refused",
			logging.String("kind", string(kind)),
			logging.Error(err),
		)
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.jobPayload(job))
}

func (s *Server) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.jobPayload(s.manager.Current()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Reset(r.Context()); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.jobPayload(s.manager.Current()))
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	data, info, err := s.manager.Result(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", info.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", info.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.WithContext(r.Context(), s.logger).Warn("result download interrupted", logging.Error(err))
	}
}

func (s *Server) jobPayload(job jobs.Job) api.Job {
	dto := api.FromJob(job)
	if job.ID != "" && job.Generation == s.manager.Current().Generation {
		dto.Artifacts = api.FromArtifacts(s.manager.Artifacts())
	}
	if dto.Result != nil {
		dto.Result.DownloadURL = resultPath
	}
	return dto
}

func (s *Server) handleTimecode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	scrub, err := strconv.ParseFloat(strings.TrimSpace(query.Get("scrub")), 64)
	if err != nil || math.IsNaN(scrub) || scrub < 0 || scrub > timecode.ScrubMax {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("scrub must be a number in [0, %d]", timecode.ScrubMax))
		return
	}
	duration, hasDuration, err := parseDuration(query.Get("duration"))
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !hasDuration {
		if base := s.handle(roleBase); base != nil {
			duration = base.Duration
		}
	}
	s.writeJSON(w, http.StatusOK, api.FromTimecode(scrub, duration))
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	quality, _ := pipeline.ParseQuality(s.cfg.Defaults.Quality)
	resolution, _ := pipeline.ParseResolution(s.cfg.Defaults.Resolution)
	s.writeJSON(w, http.StatusOK, api.FromPresets(quality, resolution))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:   "ok",
		JobState: string(s.manager.Current().State),
	})
}
