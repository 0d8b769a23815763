package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kevinaaaquil/readingbud/backend/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticate decodes an optional bearer token into the request context. Missing, malformed
// and expired tokens leave the request anonymous; routes that need a caller add LoginRequired.
func Authenticate(tokens *auth.TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				next.ServeHTTP(w, r)
				return
			}
			id, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	return id
}

// LoginRequired answers 401 for anonymous requests.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.LoginRequired(IdentityFrom(r.Context())); err != nil {
			reject(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminRequired answers 401 for anonymous and 403 for non-admin requests.
func AdminRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.AdminRequired(IdentityFrom(r.Context())); err != nil {
			reject(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
