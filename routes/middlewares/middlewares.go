package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/wesoda/anket/httpx"
	"github.com/wesoda/anket/model"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
	emailKey  contextKey = "email"
)

// Authenticated validates the bearer token and lifts the identity claims
// into typed context values for downstream handlers.
func Authenticated(tokenSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(tokenSecret, nil), identity).Handler(next)
	}
}

func identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		uid := claims[httpx.ClaimUserID]
		role := model.Role(claims[httpx.ClaimRole])
		if uid == "" || role == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		email, _ := r.Context().Value(oauth.CredentialContext).(string)
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), uid, role, email)))
	})
}

// WithIdentity attaches an authenticated identity to the context.
func WithIdentity(ctx context.Context, userID string, role model.Role, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	if email != "" {
		ctx = context.WithValue(ctx, emailKey, email)
	}
	return ctx
}

// RequireRole rejects requests whose token role is not in the given set.
func RequireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := Role(r)
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// UserID returns the authenticated user's ID from the request context.
func UserID(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey).(string)
	return uid
}

// Role returns the authenticated user's role from the request context.
func Role(r *http.Request) model.Role {
	role, _ := r.Context().Value(roleKey).(model.Role)
	return role
}

// Email returns the authenticated user's email from the request context.
func Email(r *http.Request) string {
	email, _ := r.Context().Value(emailKey).(string)
	return email
}
