package oauth

import (
	"net/http"
	"time"

	"github.com/secondlabor/laborhub/authctx"
	"github.com/secondlabor/laborhub/credentials"
)

const (
	// defaultAccessMaxAge applies when the provider did not report an
	// expiry for the access token.
	defaultAccessMaxAge = 7200
	refreshMaxAge       = 30 * 24 * 60 * 60
	stateMaxAge         = int(10 * time.Minute / time.Second)
)

// WriteSessionCookies attaches the token set to the response. An absent
// token clears its cookie instead of being set.
func WriteSessionCookies(w http.ResponseWriter, r *http.Request, set credentials.Set) {
	accessMaxAge := set.ExpiresIn
	if accessMaxAge <= 0 {
		accessMaxAge = defaultAccessMaxAge
	}
	setCookie(w, r, authctx.AccessTokenCookie, set.AccessToken, accessMaxAge)
	setCookie(w, r, authctx.RefreshTokenCookie, set.RefreshToken, refreshMaxAge)
}

// WriteStateCookie attaches the short-lived OAuth state nonce.
func WriteStateCookie(w http.ResponseWriter, r *http.Request, state string) {
	setCookie(w, r, authctx.OAuthStateCookie, state, stateMaxAge)
}

// ClearSessionCookies drops all session cookies.
func ClearSessionCookies(w http.ResponseWriter, r *http.Request) {
	setCookie(w, r, authctx.AccessTokenCookie, "", 0)
	setCookie(w, r, authctx.RefreshTokenCookie, "", 0)
	setCookie(w, r, authctx.OAuthStateCookie, "", 0)
}

func setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r != nil && r.TLS != nil,
	}
	if value == "" {
		c.MaxAge = -1
	} else {
		c.MaxAge = maxAge
	}
	http.SetCookie(w, c)
}
