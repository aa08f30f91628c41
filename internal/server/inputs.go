package server

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"splicer/internal/api"
	"splicer/internal/jobs"
	"splicer/internal/logging"
	"splicer/internal/textutil"
	"splicer/internal/timecode"
)

func (s *Server) handlePutInput(w http.ResponseWriter, r *http.Request) {
	role := mux.Vars(r)["role"]
	name := uploadName(role, r.URL.Query().Get("name"))

	duration, hasDuration, err := parseDuration(r.URL.Query().Get("duration"))
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}
	if len(data) == 0 {
		s.writeError(w, http.StatusUnprocessableEntity, "upload is empty")
		return
	}

	info := api.MediaInfo{Role: role, Name: name, Size: int64(len(data))}
	probed, probeErr := s.probe(r.Context(), name, data)
	if probeErr != nil {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "input probe failed", "input_probe_failed",
			logging.String("role", role),
			logging.String("name", name),
			logging.Error(probeErr),
			logging.String(logging.FieldErrorHint, "pass ?duration= to supply the clip length"),
		)
	} else {
		if !hasDuration {
			duration = probed.DurationSeconds()
		}
		if video, ok := probed.VideoStream(); ok {
			info.Width = video.Width
			info.Height = video.Height
			info.Codec = video.CodecName
		}
		info.HasAudio = probed.HasAudio()
	}
	info.Duration = duration
	info.Ready = timecode.Ready(duration)
	info.DurationDisplay = timecode.ToDisplay(duration)
	if !info.Ready {
		info.DurationDisplay = timecode.Unready
	}

	s.mu.Lock()
	s.inputs[role] = &input{
		handle: jobs.MediaHandle{Name: name, Data: data, Duration: duration},
		info:   info,
	}
	s.mu.Unlock()

	logging.WithContext(r.Context(), s.logger).Info("input selected",
		logging.String("role", role),
		logging.String("name", name),
		logging.Int64("size", info.Size),
		logging.Float64("duration", duration),
	)
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetInput(w http.ResponseWriter, r *http.Request) {
	role := mux.Vars(r)["role"]
	s.mu.Lock()
	in := s.inputs[role]
	s.mu.Unlock()
	if in == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no %s input selected", role))
		return
	}
	s.writeJSON(w, http.StatusOK, in.info)
}

func (s *Server) handleDeleteInput(w http.ResponseWriter, r *http.Request) {
	role := mux.Vars(r)["role"]
	s.mu.Lock()
	delete(s.inputs, role)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInputs(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var resp api.InputsResponse
	if in := s.inputs[roleBase]; in != nil {
		info := in.info
		resp.Base = &info
	}
	if in := s.inputs[roleTarget]; in != nil {
		info := in.info
		resp.Target = &info
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handle returns a copy of the selected input for role, or nil.
func (s *Server) handle(role string) *jobs.MediaHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.inputs[role]
	if in == nil {
		return nil
	}
	handle := in.handle
	return &handle
}

func uploadName(role, requested string) string {
	name := textutil.WithExtension(textutil.SanitizeFileName(requested), ".mp4")
	if name == "" {
		return role + ".mp4"
	}
	return name
}

func parseDuration(value string) (float64, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed < 0 {
		return 0, false, fmt.Errorf("invalid duration %q", value)
	}
	return parsed, true, nil
}
