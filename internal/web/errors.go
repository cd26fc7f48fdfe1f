package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error funnels through respondError, which:
//   - Logs the technical error with the request ID for correlation
//   - Maps the error to a user-friendly message via core.MapError
//   - Writes the JSON envelope {success:false, error, action, code}
//
// statusFor centralizes the HTTP status for the error taxonomy so handlers
// do not each reinvent the mapping.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rmachado/welldata/internal/core"
	"github.com/rmachado/welldata/internal/reader"
	"github.com/rmachado/welldata/internal/session"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

// respondError logs the technical error and writes the user-facing envelope.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error:   userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps the error taxonomy to HTTP statuses.
//
// Session and upload-protocol errors are client mistakes (400): the client
// must re-upload or fix its chunk set. Reader failures are 500-class per
// the contract with the external reader. The parse limiter maps to 503 so
// clients know to back off and retry.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUploadNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrIncompleteUpload),
		errors.Is(err, session.ErrTotalChunksUnknown),
		errors.Is(err, session.ErrInvalidFilename),
		errors.Is(err, core.ErrDownloadFailure):
		return http.StatusBadRequest
	case errors.Is(err, reader.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyParses):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
