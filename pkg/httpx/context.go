package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserID holds the authenticated user's id (string).
	CtxKeyUserID ctxKey = "user_id"

	// CtxKeyClaims holds the verified jwtx.Claims for the request.
	CtxKeyClaims ctxKey = "claims"

	// CtxKeyUser holds the loaded domain user record, when the middleware
	// was asked to fetch it.
	CtxKeyUser ctxKey = "user"
)

// UserIDFromCtx returns the authenticated user id, or "" when the request
// carries no identity.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
