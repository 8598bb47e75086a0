package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// CookieAuthnMiddleware authenticates requests from the access token cookie
// and injects the user id, role and claims into the request context.
func CookieAuthnMiddleware(cookieName string, v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w)
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err != nil {
				log.Info("access token rejected", "err", err)
				writeUnauthorized(w)
				return
			}

			ctx = contextWithAuth(ctx, claims)
			ctx = slogx.WithUserID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, c.UserID)
}

// writeUnauthorized matches the body of authsdk.ErrUnauthorized.
func writeUnauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"code":    "invalid_session",
		"message": "No autorizado",
	})
}
