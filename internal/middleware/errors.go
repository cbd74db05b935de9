package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      domain.Code `json:"code"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable,omitempty"`
}

// writeError writes the API's standard error envelope.
func writeError(w http.ResponseWriter, status int, code domain.Code, message string, retryable bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: message, Retryable: retryable}})
}
