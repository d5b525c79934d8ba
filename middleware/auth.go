package middleware

import (
	"context"
	"net/http"

	"clearance/portal/session"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	SessionKey   contextKey = "session"
)

// LoadSession identifies the browser by its cookie, issuing one when
// missing, and puts the stored session into the request context. The store
// is read on every request so a logout takes effect on the next one.
func LoadSession(store session.Store, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := session.EnsureID(w, r, secureCookies)
			sess := store.Get(r.Context(), sid)

			ctx := context.WithValue(r.Context(), SessionIDKey, sid)
			ctx = context.WithValue(ctx, SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionIDFromContext returns the browser id set by LoadSession
func GetSessionIDFromContext(r *http.Request) string {
	sid, ok := r.Context().Value(SessionIDKey).(string)
	if !ok {
		return ""
	}
	return sid
}

// GetSessionFromContext returns the session loaded for this request
func GetSessionFromContext(r *http.Request) session.Session {
	sess, ok := r.Context().Value(SessionKey).(session.Session)
	if !ok {
		return session.Session{}
	}
	return sess
}

// WithSession returns a copy of r carrying sid and sess
func WithSession(r *http.Request, sid string, sess session.Session) *http.Request {
	ctx := context.WithValue(r.Context(), SessionIDKey, sid)
	ctx = context.WithValue(ctx, SessionKey, sess)
	return r.WithContext(ctx)
}
