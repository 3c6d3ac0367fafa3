// Package oauth drives the token lifecycle against the upstream
// provider: authorize-URL construction, code-for-token exchange,
// refresh, and the manual set/clear escape hatch. Successful exchanges
// land in the process-wide credential store; cookies are the client's
// durable side-channel.
package oauth

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/secondlabor/laborhub/apperr"
	"github.com/secondlabor/laborhub/authctx"
	"github.com/secondlabor/laborhub/credentials"
	"github.com/secondlabor/laborhub/gateway"
)

type Service struct {
	clientID     string
	clientSecret string
	redirectURI  string
	gw           *gateway.Client
	creds        *credentials.Store
}

func NewService(gw *gateway.Client, creds *credentials.Store, clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		redirectURI:  strings.TrimSpace(redirectURI),
		gw:           gw,
		creds:        creds,
	}
}

// AuthorizeURL builds the provider authorization URL with a fresh state
// nonce. Arguments fall back to the configured client registration.
func (s *Service) AuthorizeURL(clientID, redirectURI string) (authorizeURL, state string, err error) {
	clientID = fallback(clientID, s.clientID)
	redirectURI = fallback(redirectURI, s.redirectURI)
	if clientID == "" {
		return "", "", apperr.Config("oauth client id is not configured")
	}
	if redirectURI == "" {
		return "", "", apperr.Config("oauth redirect uri is not configured")
	}

	state = uuid.NewString()
	u, err := url.Parse(s.gw.AuthorizeEndpoint())
	if err != nil {
		return "", "", apperr.Config("invalid authorize endpoint: %v", err)
	}
	q := u.Query()
	q.Set("client_id", clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), state, nil
}

// ExchangeCode trades an authorization code for a token set and stores
// it with source oauth-code. Every argument is validated independently.
func (s *Service) ExchangeCode(ctx context.Context, code, clientID, clientSecret, redirectURI string) (credentials.Set, error) {
	code = strings.TrimSpace(code)
	clientID = fallback(clientID, s.clientID)
	clientSecret = fallback(clientSecret, s.clientSecret)
	redirectURI = fallback(redirectURI, s.redirectURI)

	if code == "" {
		return credentials.Set{}, apperr.Validation("authorization code is required")
	}
	if clientID == "" {
		return credentials.Set{}, apperr.Config("oauth client id is not configured")
	}
	if clientSecret == "" {
		return credentials.Set{}, apperr.Config("oauth client secret is not configured")
	}
	if redirectURI == "" {
		return credentials.Set{}, apperr.Config("oauth redirect uri is not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("redirect_uri", redirectURI)

	payload, err := s.gw.ExchangeCode(ctx, form)
	if err != nil {
		return credentials.Set{}, err
	}
	return s.store(payload, credentials.SourceOAuthCode), nil
}

// Refresh exchanges a refresh token for a new set, source oauth-refresh.
// Token resolution: explicit argument, then the request session, then
// the last-known stored token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (credentials.Set, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		refreshToken = authctx.FromContext(ctx).RefreshToken
	}
	if refreshToken == "" {
		refreshToken = s.creds.Snapshot().RefreshToken
	}
	if refreshToken == "" {
		return credentials.Set{}, apperr.AuthRequired("no refresh token available")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	if s.clientID != "" {
		form.Set("client_id", s.clientID)
	}
	if s.clientSecret != "" {
		form.Set("client_secret", s.clientSecret)
	}

	payload, err := s.gw.RefreshToken(ctx, form)
	if err != nil {
		return credentials.Set{}, err
	}
	set := s.store(payload, credentials.SourceOAuthRefresh)
	// Providers may omit the refresh token on rotation; keep the old one.
	if set.RefreshToken == "" {
		set.RefreshToken = refreshToken
		set = s.creds.Put(set, credentials.SourceOAuthRefresh)
	}
	return set, nil
}

// SetManual injects a token set directly, bypassing the provider.
func (s *Service) SetManual(set credentials.Set) (credentials.Set, error) {
	if strings.TrimSpace(set.AccessToken) == "" {
		return credentials.Set{}, apperr.Validation("access token is required")
	}
	return s.creds.Put(set, credentials.SourceManualSet), nil
}

// ClearManual wipes the stored token set.
func (s *Service) ClearManual() credentials.Set {
	return s.creds.Clear()
}

func (s *Service) store(payload gateway.TokenPayload, source credentials.Source) credentials.Set {
	return s.creds.Put(credentials.Set{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
		ExpiresIn:    payload.ExpiresIn,
		Scope:        payload.Scopes(),
	}, source)
}

func fallback(v, def string) string {
	v = strings.TrimSpace(v)
	if v != "" {
		return v
	}
	return def
}
