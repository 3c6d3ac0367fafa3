package oauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/secondlabor/laborhub/authctx"
	"github.com/secondlabor/laborhub/credentials"
)

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestWriteSessionCookies(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	WriteSessionCookies(w, r, credentials.Set{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 3600})

	cookies := w.Result().Cookies()
	access := findCookie(t, cookies, authctx.AccessTokenCookie)
	if access.MaxAge != 3600 || access.Value != "at" {
		t.Fatalf("unexpected access cookie: %+v", access)
	}
	if !access.HttpOnly || access.SameSite != http.SameSiteLaxMode || access.Path != "/" {
		t.Fatalf("access cookie attributes wrong: %+v", access)
	}
	if access.Secure {
		t.Fatalf("secure flag must follow TLS")
	}

	refresh := findCookie(t, cookies, authctx.RefreshTokenCookie)
	if refresh.MaxAge != refreshMaxAge {
		t.Fatalf("unexpected refresh max-age: %d", refresh.MaxAge)
	}
}

func TestWriteSessionCookiesDefaultsAccessMaxAge(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSessionCookies(w, httptest.NewRequest("GET", "/", nil), credentials.Set{AccessToken: "at"})
	access := findCookie(t, w.Result().Cookies(), authctx.AccessTokenCookie)
	if access.MaxAge != defaultAccessMaxAge {
		t.Fatalf("unexpected default max-age: %d", access.MaxAge)
	}
}

func TestAbsentTokenClearsCookie(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSessionCookies(w, httptest.NewRequest("GET", "/", nil), credentials.Set{AccessToken: "at"})
	refresh := findCookie(t, w.Result().Cookies(), authctx.RefreshTokenCookie)
	if refresh.MaxAge >= 0 || refresh.Value != "" {
		t.Fatalf("absent refresh token should clear its cookie: %+v", refresh)
	}
}

func TestStateCookieLifetime(t *testing.T) {
	w := httptest.NewRecorder()
	WriteStateCookie(w, httptest.NewRequest("GET", "/", nil), "nonce")
	state := findCookie(t, w.Result().Cookies(), authctx.OAuthStateCookie)
	if state.MaxAge != stateMaxAge || state.Value != "nonce" {
		t.Fatalf("unexpected state cookie: %+v", state)
	}
}
