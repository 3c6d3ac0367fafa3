package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/secondlabor/laborhub/sse"
)

// note payload limits enforced before the call goes out.
const (
	maxNoteTitle   = 200
	maxNoteContent = 50000
)

// UserInfo is the platform's identity record for the session's user.
type UserInfo struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Email  string `json:"email,omitempty"`
}

// FetchUserInfo resolves the authenticated user behind the current
// token. Pass an override token to bypass the session resolution.
func (c *Client) FetchUserInfo(ctx context.Context, override string) (UserInfo, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, userInfoPath, nil, override)
	if err != nil {
		return UserInfo{}, err
	}
	env, err := normalize(resp)
	if err != nil {
		return UserInfo{}, err
	}
	var info UserInfo
	if err := json.Unmarshal(env.Data, &info); err != nil {
		return UserInfo{}, &Error{Status: resp.status, Raw: string(resp.body)}
	}
	if info.UserID == "" {
		return UserInfo{}, &Error{Status: resp.status, Raw: "user info response lacks userId"}
	}
	return info, nil
}

// AddNote mirrors a task-state transition as a note on the platform.
// Returns the created note id; a response without one is an error.
func (c *Client) AddNote(ctx context.Context, title, content string) (string, error) {
	title = clamp(strings.TrimSpace(title), maxNoteTitle)
	content = clamp(content, maxNoteContent)
	payload := map[string]string{
		"title":      title,
		"content":    content,
		"memoryType": "TEXT",
	}
	resp, err := c.doJSON(ctx, http.MethodPost, noteAddPath, payload, "")
	if err != nil {
		return "", err
	}
	env, err := normalize(resp)
	if err != nil {
		return "", err
	}
	var out struct {
		NoteID string `json:"noteId"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.NoteID == "" {
		return "", &Error{Status: resp.status, Raw: "note response lacks noteId"}
	}
	return out.NoteID, nil
}

// ChatRequest is the chat-stream call payload.
type ChatRequest struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
}

// ChatResult is the normalized chat output, whichever wire shape the
// platform chose.
type ChatResult struct {
	Content   string
	SessionID string
	Raw       []sse.RawEvent
}

// ChatStream sends a message to the platform's chat surface. The
// response is either an event stream, decoded incrementally, or a JSON
// envelope carrying the whole answer.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest) (ChatResult, error) {
	payload := struct {
		ChatRequest
		AppID string `json:"appId,omitempty"`
	}{ChatRequest: req, AppID: c.appID}

	resp, err := c.doJSON(ctx, http.MethodPost, chatStreamPath, payload, "")
	if err != nil {
		return ChatResult{}, err
	}
	if strings.HasPrefix(resp.contentType, "text/event-stream") {
		if resp.status < 200 || resp.status >= 300 {
			return ChatResult{}, &Error{Status: resp.status, Raw: string(resp.body)}
		}
		decoded, err := sse.Decode(bytes.NewReader(resp.body))
		if err != nil {
			return ChatResult{}, fmt.Errorf("failed to decode chat stream: %w", err)
		}
		return ChatResult{Content: decoded.Content, SessionID: decoded.SessionID, Raw: decoded.Raw}, nil
	}

	env, err := normalize(resp)
	if err != nil {
		return ChatResult{}, err
	}
	var data struct {
		Content   string `json:"content"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return ChatResult{}, &Error{Status: resp.status, Raw: string(resp.body)}
	}
	return ChatResult{Content: strings.TrimSpace(data.Content), SessionID: data.SessionID}, nil
}

// TokenPayload is the provider's token-endpoint response.
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

// Scopes splits the space-joined scope string, preserving order.
func (p TokenPayload) Scopes() []string {
	if strings.TrimSpace(p.Scope) == "" {
		return nil
	}
	return strings.Fields(p.Scope)
}

// ExchangeCode performs the form-encoded code-for-token exchange.
func (c *Client) ExchangeCode(ctx context.Context, form url.Values) (TokenPayload, error) {
	return c.tokenCall(ctx, tokenByCodePath, form)
}

// RefreshToken exchanges a refresh token for a new token set.
func (c *Client) RefreshToken(ctx context.Context, form url.Values) (TokenPayload, error) {
	return c.tokenCall(ctx, tokenByRefreshPath, form)
}

func (c *Client) tokenCall(ctx context.Context, path string, form url.Values) (TokenPayload, error) {
	resp, err := c.doForm(ctx, path, form, "")
	if err != nil {
		return TokenPayload{}, err
	}
	if _, err := normalize(resp); err != nil {
		return TokenPayload{}, err
	}
	var payload TokenPayload
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return TokenPayload{}, &Error{Status: resp.status, Raw: string(resp.body)}
	}
	if payload.AccessToken == "" {
		// Surface the provider's own error payload for diagnostics.
		return TokenPayload{}, upstreamError(resp, true, nil)
	}
	return payload, nil
}

func clamp(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
