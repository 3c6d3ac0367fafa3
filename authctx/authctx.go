// Package authctx carries per-request OAuth credentials through the
// request's call graph on context.Context. The session is a read-only
// snapshot taken from cookies when the request starts; nothing mutates
// it mid-request, and concurrent requests never observe each other's
// values.
package authctx

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const sessionContextKey contextKey = "authctx.session"

// Cookie names used for the client-side session side-channel.
const (
	AccessTokenCookie  = "lh_access_token"
	RefreshTokenCookie = "lh_refresh_token"
	OAuthStateCookie   = "lh_oauth_state"
)

// Session is the per-request credential snapshot. Empty fields mean the
// request carried no corresponding cookie.
type Session struct {
	AccessToken  string
	RefreshToken string
	State        string
}

// Authenticated reports whether the request carried an access token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// WithSession binds a session to the context for the rest of the request.
func WithSession(ctx context.Context, s Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext returns the session previously bound to the context, or a
// zero session when none was bound.
func FromContext(ctx context.Context) Session {
	if ctx == nil {
		return Session{}
	}
	s, ok := ctx.Value(sessionContextKey).(Session)
	if !ok {
		return Session{}
	}
	return s
}

// FromRequest derives a session from the request's cookies.
func FromRequest(r *http.Request) Session {
	if r == nil {
		return Session{}
	}
	return Session{
		AccessToken:  cookieValue(r, AccessTokenCookie),
		RefreshToken: cookieValue(r, RefreshTokenCookie),
		State:        cookieValue(r, OAuthStateCookie),
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}
