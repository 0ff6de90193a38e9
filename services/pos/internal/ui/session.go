package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	contextKeySession contextKey = "terminal_session"

	// SessionCookie identifies a browser terminal across requests.
	SessionCookie = "pos_terminal"
)

// WithSession returns a context carrying the terminal session id.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeySession, id)
}

// SessionFrom returns the terminal session id, or "" outside a request.
func SessionFrom(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeySession).(string); ok {
		return id
	}
	return ""
}

// SessionMiddleware assigns every browser a terminal id so toasts, pending
// confirmations and drafts can be addressed to it.
func SessionMiddleware(ttl time.Duration) func(http.Handler) http.Handler {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(ttl),
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}
