package httpapi

import (
	"net/http"
	"time"

	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/server/models"
)

// setAuthCookie writes one auth cookie with the fixed attribute set: HttpOnly,
// Secure, SameSite=Lax, host-wide path, and both Max-Age and Expires derived
// from the same lifetime.
func setAuthCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// setTokenCookies attaches both session cookies to the response. It only
// touches the header jar, never the body, so it is safe to call from
// middleware on an in-flight response.
func setTokenCookies(w http.ResponseWriter, pair *models.TokenPair, accessTTL, refreshTTL time.Duration) {
	setAuthCookie(w, common.AccessTokenCookieName, pair.AccessToken, accessTTL)
	setAuthCookie(w, common.RefreshTokenCookieName, pair.RefreshToken, refreshTTL)
}
