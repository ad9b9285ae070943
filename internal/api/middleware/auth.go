package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/drawblin/drawblin/internal/api/apierr"
	"github.com/drawblin/drawblin/internal/services/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth creates authentication middleware backed by the session service
func Auth(sessions *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			sess, err := sessions.Resolve(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the session token from the Authorization header,
// a cookie, or a query parameter. The query parameter exists for
// websocket upgrades, where browsers cannot set headers.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}
	return r.URL.Query().Get("token")
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// MustGetSession returns the session or panics
func MustGetSession(ctx context.Context) *session.Session {
	sess := GetSession(ctx)
	if sess == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return sess
}
