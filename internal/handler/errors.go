package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      domain.Code `json:"code"`
	Message   string      `json:"message"`
	Conflicts []conflict  `json:"conflicts,omitzero"`
	Retryable bool        `json:"retryable,omitempty"`
}

// statusFor maps an error kind to its HTTP status. Retryable server errors
// are 503 so clients and proxies know a resubmit may succeed.
func statusFor(de *domain.Error) int {
	switch {
	case errors.Is(de.Kind, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(de.Kind, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(de.Kind, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(de.Kind, domain.ErrConflict):
		return http.StatusConflict
	case de.Retryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the standard error envelope. Anything that is not
// a *domain.Error is treated as an internal failure; its text is logged and
// never sent to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		s.log.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		de = domain.NewInternalError(err, false)
	}

	status := statusFor(de)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}

	body := errorResponse{Error: errorDetail{
		Code:      de.Code,
		Message:   de.Message,
		Retryable: de.Retryable,
	}}
	if de.Code == domain.CodeVehicleNotAvailable {
		body.Error.Conflicts = toConflicts(de.Conflicts)
	}
	writeJSON(w, status, body)
}

// badRequest reports input the handler rejected before calling a service.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, code domain.Code, message string) {
	s.writeError(w, r, domain.NewValidationError(code, "%s", message))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
