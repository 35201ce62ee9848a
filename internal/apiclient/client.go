// Package apiclient is the single HTTP client the web tier uses to talk to the
// reservations REST API.  It attaches the session's bearer token, applies the
// request timeouts, refreshes an expired access token once and replays the
// request, and normalises the two list shapes the API returns.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout       = 10 * time.Second
	DefaultUploadTimeout = 30 * time.Second

	refreshPath = "/auth/token/refresh/"
	maxBody     = 8 << 20
)

// Tokens is the pair issued by the API at login.
type Tokens struct {
	Access  string
	Refresh string
}

// TokenStore holds the tokens of one browser session.  The session package
// provides Redis and in-memory implementations.
type TokenStore interface {
	Tokens(ctx context.Context) (Tokens, error)
	SetAccess(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	UploadTimeout time.Duration
	HTTPClient    *http.Client
	// OnSessionExpired is invoked after the tokens of a session were cleared
	// because the refresh token was rejected.
	OnSessionExpired func(ctx context.Context)
}

// Client is shared by all requests.  Bind it to a session with For.
type Client struct {
	baseURL       string
	timeout       time.Duration
	uploadTimeout time.Duration
	http          *http.Client
	onExpired     func(ctx context.Context)
}

// New returns a Client.  Zero timeouts fall back to 10s and 30s.
func New(opts Options) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		timeout:       opts.Timeout,
		uploadTimeout: opts.UploadTimeout,
		http:          opts.HTTPClient,
		onExpired:     opts.OnSessionExpired,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.uploadTimeout <= 0 {
		c.uploadTimeout = DefaultUploadTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// For binds the client to a session.  A nil store makes anonymous calls.
func (c *Client) For(tokens TokenStore) *API {
	return &API{c: c, tokens: tokens}
}

// API issues calls on behalf of one session.
type API struct {
	c      *Client
	tokens TokenStore
}

// call describes one logical request.  The body is kept as bytes so the
// request can be replayed after a token refresh.
type call struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	upload      bool
}

func jsonCall(method, path string, payload any) (call, error) {
	cl := call{method: method, path: path}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return cl, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		cl.body = b
		cl.contentType = "application/json"
	}
	return cl, nil
}

// do runs the call, decoding a successful body into out when out is non-nil.
func (a *API) do(ctx context.Context, cl call, out any) error {
	raw, err := a.send(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
	}
	return nil
}

// send performs the call with the 401 discipline: one refresh, one replay,
// then the session is cleared and ErrSessionExpired returned.
func (a *API) send(ctx context.Context, cl call) ([]byte, error) {
	var tok Tokens
	if a.tokens != nil {
		t, err := a.tokens.Tokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session tokens: %w", err)
		}
		tok = t
	}

	status, raw, err := a.attempt(ctx, cl, tok.Access)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized && a.tokens != nil {
		access, rerr := a.refresh(ctx, tok.Refresh)
		if rerr != nil {
			return nil, a.expire(ctx, rerr)
		}
		status, raw, err = a.attempt(ctx, cl, access)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, a.expire(ctx, errors.New("replayed request rejected"))
		}
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Method: cl.method, Path: cl.path, Status: status, Detail: detailFromBody(raw), Body: raw}
	}
	return raw, nil
}

func (a *API) attempt(ctx context.Context, cl call, access string) (int, []byte, error) {
	timeout := a.c.timeout
	if cl.upload {
		timeout = a.c.uploadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := a.c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", cl.method, cl.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := a.c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return 0, nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, ErrTimeout)
		}
		return 0, nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, nil, fmt.Errorf("read %s %s: %w", cl.method, cl.path, err)
	}
	return resp.StatusCode, raw, nil
}

// refresh exchanges the refresh token for a new access token and stores it.
// It never goes through send, so a failing refresh cannot recurse.
func (a *API) refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.New("no refresh token available")
	}
	cl, err := jsonCall(http.MethodPost, refreshPath, map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}
	status, raw, err := a.attempt(ctx, cl, "")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", &APIError{Method: cl.method, Path: cl.path, Status: status, Detail: detailFromBody(raw), Body: raw}
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Access == "" {
		return "", errors.New("refresh response carried no access token")
	}
	if err := a.tokens.SetAccess(ctx, out.Access); err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}
	return out.Access, nil
}

func (a *API) expire(ctx context.Context, cause error) error {
	_ = a.tokens.Clear(ctx)
	if a.c.onExpired != nil {
		a.c.onExpired(ctx)
	}
	return fmt.Errorf("%w: %v", ErrSessionExpired, cause)
}

// getList fetches a list endpoint and normalises its shape.
func getList[T any](ctx context.Context, a *API, path string, query url.Values) (List[T], error) {
	raw, err := a.send(ctx, call{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return List[T]{Kind: KindEmpty, Items: []T{}}, err
	}
	list, err := DecodeList[T](raw)
	if err != nil {
		return list, fmt.Errorf("decode list %s: %w", path, err)
	}
	return list, nil
}

func (a *API) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return a.do(ctx, call{method: http.MethodGet, path: path, query: query}, out)
}

func (a *API) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	cl, err := jsonCall(method, path, payload)
	if err != nil {
		return err
	}
	return a.do(ctx, cl, out)
}
