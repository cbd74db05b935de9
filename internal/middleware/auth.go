package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/motorhome-rental/internal/auth"
	"github.com/pkordes/motorhome-rental/internal/domain"
)

// TokenVerifier turns a raw bearer token into a customer id.
type TokenVerifier interface {
	Verify(raw string) (uuid.UUID, error)
}

// NewAuthenticator returns a middleware that verifies an Authorization bearer
// token when one is present and stores the customer id in the request
// context. A bad token is rejected with 401. Requests without a token pass
// through anonymously; the services decide whether identity is required.
func NewAuthenticator(v TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, domain.CodeInvalidToken, "authorization header must be a bearer token", false)
				return
			}

			id, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				log.WarnContext(r.Context(), "bearer token rejected", "error", err)
				msg := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "token has expired"
				}
				writeError(w, http.StatusUnauthorized, domain.CodeInvalidToken, msg, false)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCustomer(r.Context(), id)))
		})
	}
}
