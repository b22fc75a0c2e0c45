// Package middleware provides HTTP middlewares for session gating and
// request logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/wawanher487/e-commerceApps/internal/models"
	"github.com/wawanher487/e-commerceApps/internal/service"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionCookie is the fixed cookie name carrying the session token.
const SessionCookie = "session"

// SessionGetter resolves a session token to the stored session. Implemented
// by the session service.
type SessionGetter interface {
	Get(ctx context.Context, token string) (*models.Session, error)
}

// RouteGuard gates a route group on session presence and, when role is
// non-empty, on the session's role. Without a valid session the request is
// redirected to /login; with the wrong role it is redirected to the
// session's own dashboard. This is navigation convenience only, never a
// security boundary: the backend authorizes every forwarded call itself.
func RouteGuard(sessions SessionGetter, role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := resolveSession(r, sessions)
			if err != nil || sess == nil || !sess.Profile.Role.Valid() {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			if role != "" && sess.Profile.Role != role {
				http.Redirect(w, r, sess.Profile.Role.DashboardPath(), http.StatusFound)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the guarded session from the request context.
// Returns nil outside a guarded route.
func SessionFromContext(ctx context.Context) *models.Session {
	val := ctx.Value(sessionKey)
	if sess, ok := val.(*models.Session); ok {
		return sess
	}
	return nil
}

// resolveSession reads the session cookie and loads the stored session.
func resolveSession(r *http.Request, sessions SessionGetter) (*models.Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, service.ErrNoSession
	}
	return sessions.Get(r.Context(), cookie.Value)
}

// ResolveSession is the exported form used by handlers outside a guard (the
// login page's already-authenticated redirect).
func ResolveSession(r *http.Request, sessions SessionGetter) (*models.Session, error) {
	return resolveSession(r, sessions)
}
