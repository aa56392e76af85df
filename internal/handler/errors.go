package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/webcomics/internal/domain"
)

// PurgeHeader is set to "failed" on a successful write whose edge-cache purge
// did not go through. The write itself is committed.
const PurgeHeader = "X-Cache-Purge"

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// notFound writes a 404 naming what was being looked up.
func notFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, errorBody("not_found", message))
}

// badRequest writes a 422 for input rejected before reaching the service
// layer (malformed JSON, unparsable path or query parameters).
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", message))
}

// writeError maps a service error to its status and body. what names the
// resource for 404 messages.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, what string, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, what+" not found")
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", detail(err, domain.ErrValidation)))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict", detail(err, domain.ErrConflict)))
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("too_large", "request body too large"))
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal", "internal server error"))
	}
}

// respond writes the result of a write. A purge failure still returns v with
// status, flagged by PurgeHeader.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, what string, v any, err error) {
	if err != nil && !s.purgeFailed(w, r, err) {
		s.writeError(w, r, what, err)
		return
	}
	writeJSON(w, status, v)
}

// respondDeleted writes 204 for a delete, flagging a failed purge.
func (s *Server) respondDeleted(w http.ResponseWriter, r *http.Request, what string, err error) {
	if err != nil && !s.purgeFailed(w, r, err) {
		s.writeError(w, r, what, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) purgeFailed(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, domain.ErrPurgeFailed) {
		return false
	}
	s.log.WarnContext(r.Context(), "write committed, edge cache not purged", "path", r.URL.Path, "error", err)
	w.Header().Set(PurgeHeader, "failed")
	return true
}

// detail extracts the human-readable part after a wrapped sentinel.
// e.g. "service.PageService.Create: validation error: slug is required" → "slug is required"
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeInto decodes the body into v, writing the error reply itself when the
// body cannot be read. It reports whether the handler should continue.
func (s *Server) decodeInto(w http.ResponseWriter, r *http.Request, v any) bool {
	err := decode(r, v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("too_large", "request body too large"))
		return false
	}
	badRequest(w, "invalid request body: "+err.Error())
	return false
}
