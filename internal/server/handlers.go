package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
)

type statsResponse struct {
	Subject    engine.Subject  `json:"subject"`
	Stats      engine.AgeStats `json:"stats"`
	ComputedAt time.Time       `json:"computedAt"`
}

type timelineResponse struct {
	Subject engine.Subject         `json:"subject"`
	Entries []engine.TimelineEntry `json:"entries"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.ready(w)
	if !ok {
		return
	}
	if snap.err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:            string(engine.CodeSchedulerFailure),
			ErrorDescription: config.HTTPMsgHalted,
		})
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Subject:    snap.subject,
		Stats:      snap.stats,
		ComputedAt: snap.at,
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.ready(w)
	if !ok {
		return
	}
	entries, err := engine.Timeline(snap.subject.Birth, s.Clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timelineResponse{Subject: snap.subject, Entries: entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
	_, _ = io.WriteString(w, config.HealthBody)
}

// ready loads the latest snapshot, answering 503 while the loop has not ticked yet.
func (s *Server) ready(w http.ResponseWriter) (*snapshot, bool) {
	snap := s.latest.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:            "unavailable",
			ErrorDescription: config.HTTPMsgInitializing,
		})
		return nil, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// best-effort fallback; don't override status for the caller
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
	}
}

// writeError translates engine error codes into HTTP responses.
func writeError(w http.ResponseWriter, err error) {
	code := engine.CodeOf(err)
	if code == "" {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	writeJSON(w, statusForCode(code), errorResponse{Error: string(code), ErrorDescription: err.Error()})
}

func statusForCode(code engine.Code) int {
	switch code {
	case engine.CodeInvalidInput:
		return http.StatusBadRequest
	case engine.CodeNotFound:
		return http.StatusNotFound
	case engine.CodeSchedulerFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
