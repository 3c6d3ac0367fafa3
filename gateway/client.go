// Package gateway issues authenticated HTTP calls to the upstream
// platform and normalizes its response envelope. Calls are at-most-once
// from this layer's perspective; retry policy, if any, belongs to the
// caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/secondlabor/laborhub/authctx"
	"github.com/secondlabor/laborhub/credentials"
	"github.com/secondlabor/laborhub/observe"
)

// Upstream paths, relative to the configured base URL.
const (
	authorizePath      = "/oauth/authorize"
	tokenByCodePath    = "/api/oauth/token"
	tokenByRefreshPath = "/api/oauth/refresh"
	userInfoPath       = "/api/secondme/user/info"
	noteAddPath        = "/api/secondme/note/add"
	chatStreamPath     = "/api/secondme/chat/stream"
)

// Error carries the upstream HTTP status and the parsed or raw body of
// a failed call.
type Error struct {
	Status int
	Body   any
	Raw    string
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Raw)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return fmt.Sprintf("upstream error (%d): %s", e.Status, msg)
}

type Client struct {
	baseURL    string
	appID      string
	creds      *credentials.Store
	httpClient *http.Client
	sink       observe.Sink
}

type Option func(*Client)

func WithAppID(appID string) Option {
	return func(c *Client) { c.appID = strings.TrimSpace(appID) }
}

func WithCredentials(store *credentials.Store) Option {
	return func(c *Client) {
		if store != nil {
			c.creds = store
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithSink reports every upstream call, with its duration and HTTP
// status, to the given sink.
func WithSink(sink observe.Sink) Option {
	return func(c *Client) {
		if sink != nil {
			c.sink = sink
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   credentials.NewStore(),
		httpClient: &http.Client{
			Timeout:   90 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AuthorizeEndpoint is the provider's redirect-based authorization URL.
func (c *Client) AuthorizeEndpoint() string {
	return c.baseURL + authorizePath
}

// bearer resolves the token for an outgoing call: explicit override
// first, then the request-scoped session token, then the process-wide
// last-known token. A concurrent request's session token is never used.
func (c *Client) bearer(ctx context.Context, override string) string {
	if override != "" {
		return override
	}
	if s := authctx.FromContext(ctx); s.AccessToken != "" {
		return s.AccessToken
	}
	return c.creds.Snapshot().AccessToken
}

// envelope is the platform's JSON response wrapper. Code is a pointer
// so that payloads without a business code (token responses) pass the
// code check untouched.
type envelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type rawResponse struct {
	status      int
	contentType string
	body        []byte
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, override string) (*rawResponse, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(ctx, req, override)
}

func (c *Client) doForm(ctx context.Context, path string, form url.Values, override string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(ctx, req, override)
}

func (c *Client) send(ctx context.Context, req *http.Request, override string) (*rawResponse, error) {
	if token := c.bearer(ctx, override); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json, text/event-stream")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.report(ctx, req.URL.Path, 0, start, err)
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()
	c.report(ctx, req.URL.Path, resp.StatusCode, start, nil)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}
	return &rawResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        raw,
	}, nil
}

func (c *Client) report(ctx context.Context, path string, status int, start time.Time, err error) {
	if c.sink == nil {
		return
	}
	_ = c.sink.Emit(ctx, observe.GatewayEvent(path, status, time.Since(start).Milliseconds(), err))
}

// normalize applies the envelope rule: success requires a 2xx status
// and, when the body carries a numeric code, code == 0. A non-JSON body
// on a 2xx response is a protocol violation.
func normalize(r *rawResponse) (*envelope, error) {
	var env envelope
	jsonErr := json.Unmarshal(r.body, &env)

	if r.status < 200 || r.status >= 300 {
		return nil, upstreamError(r, jsonErr == nil, &env)
	}
	if jsonErr != nil {
		return nil, &Error{Status: r.status, Raw: string(r.body)}
	}
	if env.Code != nil && *env.Code != 0 {
		return nil, upstreamError(r, true, &env)
	}
	return &env, nil
}

func upstreamError(r *rawResponse, parsed bool, env *envelope) *Error {
	e := &Error{Status: r.status, Raw: string(r.body)}
	if parsed {
		var body any
		if err := json.Unmarshal(r.body, &body); err == nil {
			e.Body = body
		}
		if env != nil && env.Message != "" && e.Raw == "" {
			e.Raw = env.Message
		}
	}
	return e
}
