package api

// This file contains the middleware for handling authentication.

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AuthMiddleware verifies HTTP basic auth against the configured
// credentials. When no password hash is configured, authentication is
// disabled and every request passes through.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := s.app.Config()
		if cfg.Auth.PasswordHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="jobdeck"`)
			RespondWithError(w, http.StatusUnauthorized, "Unauthorized: credentials required")
			return
		}

		if username != cfg.Auth.Username ||
			bcrypt.CompareHashAndPassword([]byte(cfg.Auth.PasswordHash), []byte(password)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="jobdeck"`)
			RespondWithError(w, http.StatusUnauthorized, "Unauthorized: invalid credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}
