package api

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
)

// rateLimitMiddleware applies a global token bucket to control
// requests. Requests over the limit get 429.
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, envelope{
					Status:  "error",
					Message: "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware writes one structured line per request.
func loggingMiddleware(logger common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Log("DEBUG", "http request", map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})
			next.ServeHTTP(w, r)
		})
	}
}

// methodNotAllowedHandler answers wrong-verb requests with the wire
// error envelope instead of the default empty 405.
func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{
			Status:  "error",
			Message: "method not allowed",
		})
	})
}

// notFoundHandler answers unknown paths with the wire error envelope.
func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{
			Status:  "error",
			Message: "not found",
		})
	})
}
