package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
)

// Session cookies are HttpOnly, Secure and SameSite=None so the frontend can
// live on another origin.
func sessionCookie(name, value string, expires, now time.Time) *http.Cookie {
	maxAge := int(expires.Sub(now).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func setSessionCookies(w http.ResponseWriter, pair domain.SessionPair) {
	now := time.Now()
	http.SetCookie(w, sessionCookie(authsdk.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt, now))
	http.SetCookie(w, sessionCookie(authsdk.RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt, now))
}

func setAccessCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, sessionCookie(authsdk.AccessTokenCookie, token, expires, time.Now()))
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{authsdk.AccessTokenCookie, authsdk.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
	}
}
