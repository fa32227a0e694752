package httpx

import "context"

type ctxKey string

const (
	CtxKeyUsername ctxKey = "username"
	CtxKeyRoles    ctxKey = "roles"
	CtxKeyClaims   ctxKey = "claims" // full jwtx.Claims when needed
)

// UsernameFromCtx returns the authenticated username, or "" when the
// request is unauthenticated.
func UsernameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUsername).(string); ok {
		return v
	}
	return ""
}

// RolesFromCtx returns the authenticated user's role claims.
func RolesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyRoles).([]string); ok {
		return v
	}
	return nil
}
