package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/canopy-tools/canopy/pkg/doc"
	"github.com/canopy-tools/canopy/pkg/errors"
	"github.com/canopy-tools/canopy/pkg/pipeline"
)

// maxBodyBytes caps request bodies. Documents beyond this are rejected
// before decoding.
const maxBodyBytes = 8 << 20

type layoutRequest struct {
	Document doc.Document     `json:"document"`
	Options  pipeline.Options `json:"options"`
}

type layoutResponse struct {
	Document doc.Document `json:"document"`
	CacheHit bool         `json:"cache_hit"`
}

type checkRequest struct {
	Document doc.Document `json:"document"`
}

type checkResponse struct {
	OK       bool               `json:"ok"`
	Problems []pipeline.Problem `json:"problems"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Options.SetDefaults()
	if err := req.Options.Validate(); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout options"))
		return
	}
	req.Options.Logger = s.logger

	positioned, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), req.Document, req.Options)
	if err != nil {
		// The runner only fails on documents that do not decode; option
		// errors were caught above.
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidDocument, err, "layout failed"))
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Document: positioned, CacheHit: hit})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !s.decode(w, r, &req) {
		return
	}
	problems := pipeline.Check(req.Document)
	ok := true
	for _, p := range problems {
		if p.Severity == pipeline.SeverityError {
			ok = false
			break
		}
	}
	if problems == nil {
		problems = []pipeline.Problem{}
	}
	writeJSON(w, http.StatusOK, checkResponse{OK: ok, Problems: problems})
}

// decode reads and unmarshals the request body into v. On failure it writes
// an error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read request body"))
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidDocument, err, "invalid JSON body"))
		return false
	}
	return true
}

// writeError maps a structured error to an HTTP status and JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	var status int
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidNodeID, errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidPosition, errors.ErrCodeInvalidConfig,
		errors.ErrCodeStructure, errors.ErrCodeDuplicateID, errors.ErrCodeLastRoot,
		errors.ErrCodeMoveDenied:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
