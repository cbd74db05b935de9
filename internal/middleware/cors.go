// Package middleware provides reusable HTTP middleware for the rental API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// preflightMaxAge is how long, in seconds, browsers may cache a preflight.
const preflightMaxAge = 600

// NewCORSHandler returns a middleware that applies CORS headers for the given
// origins (scheme + host, no trailing slash). Credentials travel as bearer
// tokens, never cookies, so AllowCredentials stays off.
//
// Location is exposed so browser clients can follow a created booking, and
// Retry-After so they can back off from 429 and 503 responses.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Location", "Retry-After", "X-Request-Id"},
		MaxAge:         preflightMaxAge,
	})
	return c.Handler
}
