package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	SessionKey contextKey = "session"

	// SessionHeader carries the client's session ID on requests and upload responses.
	SessionHeader = "X-Session-ID"
	// DefaultSession is used when a request carries no session header.
	DefaultSession = "default"
)

// Session resolves the session ID from the X-Session-ID header and stores it in
// the request context. Requests without the header share DefaultSession.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(r)
		if err := ValidateSessionID(id); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext extracts the session ID, falling back to DefaultSession.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(SessionKey).(string); ok && id != "" {
		return id
	}
	return DefaultSession
}

func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	return DefaultSession
}
