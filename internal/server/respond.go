package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/critpath/pkg/errors"
)

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// writeJSON writes data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidActivity, errs.ErrCodeInvalidEdge,
		errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errs.ErrCodeActivityNotFound, errs.ErrCodeSessionNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeProtectedActivity, errs.ErrCodeCycle:
		return http.StatusConflict
	case errs.ErrCodeIncompleteGraph:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// writeError writes err as {"code","message"}. Errors without a code are
// reported as INTERNAL_ERROR and logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	status := statusFor(code)
	msg := errs.UserMessage(err)
	if code == "" {
		code = errs.ErrCodeInternal
		s.logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
