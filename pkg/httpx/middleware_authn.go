package httpx

import (
	"net/http"
	"strings"

	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/slogx"
	"github.com/stashbin/stashbin/pkg/tokenx"
)

// AuthnMiddleware gates protected routes behind a bearer access token.
// Verification is purely cryptographic — no store round-trip. Only tokens of
// type "access" pass; refresh tokens presented here are rejected.
func AuthnMiddleware(codec *tokenx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				api.ErrUnauthorized.Write(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := codec.Verify(raw)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				api.ErrUnauthorized.Write(w)
				return
			}

			if claims.TokenType != tokenx.TypeAccess {
				log.Warn("non-access token presented on protected route")
				api.ErrUnauthorized.Write(w)
				return
			}

			ctx = contextWithIdentity(ctx, Identity{
				UserID:   claims.Subject,
				Username: claims.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
