package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Authenticator decides whether a submitted admin code grants access.
type Authenticator interface {
	Authenticate(code string) bool
}

// SecretAuthenticator accepts a single shared admin code. An empty
// configured secret rejects everything, so a misconfigured deployment
// fails closed.
type SecretAuthenticator struct {
	secret string
}

func NewSecretAuthenticator(secret string) *SecretAuthenticator {
	return &SecretAuthenticator{secret: secret}
}

func (a *SecretAuthenticator) Authenticate(code string) bool {
	if a.secret == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.secret), []byte(code)) == 1
}

// RequireAuth is middleware that requires a valid admin session
func RequireAuth(sm *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sm.GetSessionFromRequest(r)
			if session == nil {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			// Add session to context
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext retrieves the session from the request context
func GetSessionFromContext(ctx context.Context) *Session {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// SetSessionInContext adds a session to the context.
// This is primarily for testing - use RequireAuth middleware in production.
func SetSessionInContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
