package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AuthTokenHeader carries the shared secret for the management endpoints.
const AuthTokenHeader = "X-Auth-Token"

// requireAuthToken guards management endpoints with a shared token using a
// constant-time comparison. Fails closed: with no token configured every
// request is rejected.
func requireAuthToken(token string, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				logger.Warn("Management endpoint called but no auth token is configured")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			provided := r.Header.Get(AuthTokenHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
