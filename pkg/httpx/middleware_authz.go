package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyScope the caller must have at least one of the provided scopes.
func RequireAnyScope(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[s] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range scopesFromCtx(r.Context()) {
				if _, ok := want[s]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeBearerScopeError(w, http.StatusForbidden, required...)
		})
	}
}

// RFC 6750-compliant error response for bearer insufficient_scope.
func writeBearerScopeError(w http.ResponseWriter, code int, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, code, map[string]string{
		"error":             "insufficient_scope",
		"error_description": "token lacks the required scope",
	})
}
