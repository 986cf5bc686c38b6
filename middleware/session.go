package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const SessionContextKey = contextKey("session_id")

// SessionHeader carries the opaque shopper session identifier. The
// client generates and persists it once; requests without one get a
// fresh id echoed back so the client can adopt it.
const SessionHeader = "X-Session-ID"

// SessionMiddleware attaches a session id to every request context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		w.Header().Set(SessionHeader, sessionID)
		ctx := context.WithValue(r.Context(), SessionContextKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID extracts the session id from a request context.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionContextKey).(string)
	return id
}
