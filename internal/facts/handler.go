package facts

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// ServeHTTP exposes the generator with the same contract as the hosted function:
// OPTIONS answers the CORS preflight, POST takes a Request.
func (g *Generator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HeaderCORSOrigin, config.CORSAllowOrigin)
	w.Header().Set(config.HeaderCORSHeaders, config.CORSAllowHeaders)

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
		_, _ = io.WriteString(w, config.HealthBody)
		return
	case http.MethodPost:
	default:
		w.Header().Set(config.HeaderAllow, http.MethodPost+", "+http.MethodOptions)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, config.MaxRequestBodySize)).Decode(&req); err != nil {
		writeFailure(w, http.StatusInternalServerError, config.ErrBodyInvalid)
		return
	}

	if strings.TrimSpace(req.Birthdate) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: config.ErrBirthdateMissing})
		return
	}

	resp, err := g.Generate(req)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeFailure answers with an error and the fallback facts callers should show.
func writeFailure(w http.ResponseWriter, status int, message string) {
	fallback := Fallback()
	writeJSON(w, status, ErrorResponse{Error: message, Facts: &fallback})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompFacts,
			config.LogKeyError, err)
	}
}
