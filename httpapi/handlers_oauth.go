package httpapi

import (
	"net/http"

	"github.com/secondlabor/laborhub/credentials"
	"github.com/secondlabor/laborhub/oauth"
	"github.com/secondlabor/laborhub/observe"
)

func (s *Server) handleAuthorizeURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	authorizeURL, state, err := s.cfg.OAuth.AuthorizeURL(q.Get("client_id"), q.Get("redirect_uri"))
	if err != nil {
		writeErr(w, err)
		return
	}
	oauth.WriteStateCookie(w, r, state)
	writeJSON(w, http.StatusOK, map[string]string{
		"authorizeUrl": authorizeURL,
		"state":        state,
	})
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		Code         string `json:"code"`
		ClientID     string `json:"clientId"`
		ClientSecret string `json:"clientSecret"`
		RedirectURI  string `json:"redirectUri"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	set, err := s.cfg.OAuth.ExchangeCode(r.Context(), req.Code, req.ClientID, req.ClientSecret, req.RedirectURI)
	if err != nil {
		s.emit(r.Context(), observe.OAuthEvent("oauth.exchange", string(credentials.SourceOAuthCode), err))
		writeErr(w, err)
		return
	}
	oauth.WriteSessionCookies(w, r, set)
	s.emit(r.Context(), observe.OAuthEvent("oauth.exchange", string(set.Source), nil))
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	set, err := s.cfg.OAuth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.emit(r.Context(), observe.OAuthEvent("oauth.refresh", string(credentials.SourceOAuthRefresh), err))
		writeErr(w, err)
		return
	}
	oauth.WriteSessionCookies(w, r, set)
	s.emit(r.Context(), observe.OAuthEvent("oauth.refresh", string(set.Source), nil))
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleManualToken(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
			TokenType    string `json:"tokenType"`
			ExpiresIn    int    `json:"expiresIn"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		set, err := s.cfg.OAuth.SetManual(credentials.Set{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
			TokenType:    req.TokenType,
			ExpiresIn:    req.ExpiresIn,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		oauth.WriteSessionCookies(w, r, set)
		s.emit(r.Context(), observe.OAuthEvent("oauth.manual", string(set.Source), nil))
		writeJSON(w, http.StatusOK, set)
	case http.MethodDelete:
		set := s.cfg.OAuth.ClearManual()
		oauth.ClearSessionCookies(w, r)
		s.emit(r.Context(), observe.OAuthEvent("oauth.manual", string(set.Source), nil))
		writeJSON(w, http.StatusOK, set)
	default:
		writeMethodNotAllowed(w)
	}
}
