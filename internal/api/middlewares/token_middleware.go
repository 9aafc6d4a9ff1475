package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const driveTokenKey ctxKey = "drive_token"

// DriveTokenMiddleware attaches the caller's Google OAuth access token to the
// request context. The token is read from X-Drive-Token, or from a Bearer
// Authorization header. Requests without one pass through unchanged.
func DriveTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("X-Drive-Token"))
		if token == "" {
			if auth, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				token = strings.TrimSpace(auth)
			}
		}
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), driveTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DriveToken returns the token stored by DriveTokenMiddleware, or "".
func DriveToken(ctx context.Context) string {
	token, _ := ctx.Value(driveTokenKey).(string)
	return token
}
