// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"featherpress/internal/auth"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// IdentityKey is the context key for the authenticated caller.
const IdentityKey contextKey = "identity"

// Authenticate verifies a bearer token when one is sent and stores the
// caller in the request context. Requests without a token pass through
// anonymously; a malformed or expired token is rejected with 401.
func Authenticate(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			id, err := issuer.Verify(strings.TrimSpace(token))
			if err != nil {
				slog.Debug("token rejected", "error", err, "remote", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth returns 401 for anonymous requests. Must be applied after
// Authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin returns 401 for anonymous callers and 403 for callers
// without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		if id == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !id.Role.CanManage() {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom returns the authenticated caller, or nil for anonymous
// requests.
func IdentityFrom(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(IdentityKey).(*auth.Identity)
	return id
}

// writeError writes the API error shape {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
