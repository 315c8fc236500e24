package middleware

import (
	"log/slog"
	"net/http"
)

// PanicRecoveryMiddleware converts handler panics into 500 responses so a
// single bad request cannot take the server down.
func PanicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Handler panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
