package httpx

import "context"

// Identity is the authenticated caller attached to the request context by
// AuthnMiddleware. Access-token verification is stateless, so this is all a
// handler ever learns about the caller without a store lookup.
type Identity struct {
	UserID   string
	Username string
}

type ctxKey struct{}

func contextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
