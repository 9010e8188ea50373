package httpx

import (
	"context"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeySubject ctxKey = "subject"
	CtxKeyScopes  ctxKey = "scopes"
	CtxKeyClaims  ctxKey = "claims"
)

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}

// SubjectFromContext returns the authenticated admin subject, or "".
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the verified admin claims, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}
