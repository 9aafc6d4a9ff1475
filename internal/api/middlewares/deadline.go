package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds each request's context by timeout. It never writes a
// response itself; handlers see context.DeadlineExceeded and report it.
func Deadline(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
