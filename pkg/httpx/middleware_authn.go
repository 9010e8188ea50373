package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/jwtx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

// AuthnMiddleware verifies the admin bearer token and injects its claims.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return raw, raw != ""
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubject, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyScopes, c.Scopes)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
