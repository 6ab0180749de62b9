package auth

import (
	"context"
	"net/http"
	"strings"
)

// Session is the authenticated caller attached to a request context.
type Session struct {
	UserID int64
	Email  string
}

type contextKey struct{}

// SessionFromContext returns the session set by Middleware, or nil on
// unauthenticated requests.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// ContextWithSession is exposed for handler tests.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// Middleware rejects requests without a valid bearer token and attaches
// the resolved session to the request context.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}
			userID, email, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			ctx := ContextWithSession(r.Context(), &Session{UserID: userID, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
