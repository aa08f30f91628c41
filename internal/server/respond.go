package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"splicer/internal/api"
	"splicer/internal/jobs"
	"splicer/internal/logging"
	"splicer/internal/services"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

// writeFailure maps err onto a status code and error kind.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Kind: kind})
}

func statusFor(err error) (int, string) {
	if errors.Is(err, jobs.ErrJobActive) {
		return http.StatusConflict, "job_active"
	}
	kind := string(jobs.Classify(err))
	switch services.Marker(err) {
	case services.ErrInvalidInput:
		return http.StatusUnprocessableEntity, kind
	case services.ErrNotFound:
		return http.StatusNotFound, kind
	case services.ErrDuplicateName:
		return http.StatusConflict, kind
	default:
		return http.StatusInternalServerError, kind
	}
}
