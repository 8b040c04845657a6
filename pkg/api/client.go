package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/mchmarny/blogadmin/pkg/metric"
)

const (
	// DefaultBaseURL is the API root used when none is configured.
	DefaultBaseURL = "http://localhost:8080/api"

	// DefaultTimeout bounds every request, including the token refresh.
	DefaultTimeout = 10 * time.Second

	// DefaultRefreshPath is the endpoint exchanging a refresh token for a new token pair.
	DefaultRefreshPath = "/auth/kakao/refresh"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "blogadmin"

	// maxErrorBody caps how much of an error response is read for its message.
	maxErrorBody = 64 << 10

	refreshKey = "refresh"
)

// Credentials stores the token pair used by the client.
type Credentials interface {
	// Tokens returns the current access and refresh tokens, either may be empty.
	Tokens(ctx context.Context) (access, refresh string, err error)

	// Update stores a freshly issued token pair. An empty refresh token keeps the old one.
	Update(ctx context.Context, pair TokenPair) error

	// Clear forgets both tokens.
	Clear(ctx context.Context) error
}

// Client issues JSON requests against the blog API with bearer-token auth.
// On 401 it refreshes the token once (single-flight across callers) and
// retries the request once. It is safe for concurrent use.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	creds         Credentials
	refreshPath   string
	userAgent     string
	onAuthFailure func(error)
	log           *slog.Logger
	registry      prometheus.Registerer

	refreshes singleflight.Group

	requests  metric.IncrementalCounter
	durations metric.DurationObserver
	refreshed metric.IncrementalCounter
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. If not specified, DefaultTimeout (10s) is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRefreshPath overrides the token refresh endpoint.
func WithRefreshPath(p string) Option {
	return func(c *Client) { c.refreshPath = p }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithAuthFailureHandler registers fn to be called once per failed refresh,
// after credentials were cleared. It is the place to send the user to login.
func WithAuthFailureHandler(fn func(error)) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRegistry registers the client metrics in reg. By default each client
// gets its own registry so multiple clients never collide.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(c *Client) { c.registry = reg }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host required", baseURL)
	}

	if creds == nil {
		return nil, errors.New("credentials are required")
	}

	c := &Client{
		baseURL:     u,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		creds:       creds,
		refreshPath: DefaultRefreshPath,
		userAgent:   DefaultUserAgent,
		log:         slog.Default(),
		registry:    prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.requests = metric.NewCounterWithRegistry(c.registry,
		"api_requests_total", "API requests by method and status code.", "method", "code")
	c.durations = metric.NewHistogramWithRegistry(c.registry,
		"api_request_duration_seconds", "API request latency.", "method")
	c.refreshed = metric.NewCounterWithRegistry(c.registry,
		"token_refresh_total", "Token refresh attempts by result.", "result")

	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends in as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: in}, out)
}

// Put sends in as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: in}, out)
}

// Patch sends in as JSON and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: in}, out)
}

// Delete issues DELETE path.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Upload posts a multipart form.
func (c *Client) Upload(ctx context.Context, path string, form *Form, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Form: form}, out)
}

// Do executes req and decodes a successful response into out. out may be
// nil to discard the body, or a *string to receive it verbatim.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	req.Method = methodOrGet(req.Method)

	body, contentType, err := req.encode()
	if err != nil {
		return err
	}

	var access string
	if !req.Public {
		if access, _, err = c.creds.Tokens(ctx); err != nil {
			return fmt.Errorf("load credentials: %w", err)
		}
	}

	resp, err := c.send(ctx, req, body, contentType, access)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.Public {
		first := c.statusError(req, resp)

		fresh, err := c.refresh(ctx, access)
		if err != nil {
			return fmt.Errorf("%w: %w", err, first)
		}

		if resp, err = c.send(ctx, req, body, contentType, fresh); err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", ErrUnauthorized, c.statusError(req, resp))
		}
	}

	return c.decode(req, resp, out)
}

// send performs a single HTTP exchange. The caller owns resp.Body.
func (c *Client) send(ctx context.Context, req Request, body []byte, contentType, token string) (*http.Response, error) {
	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, target.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("create request %s %s: %w", req.Method, req.Path, err)
	}

	hr.Header.Set("Accept", "application/json")
	hr.Header.Set("User-Agent", c.userAgent)
	hr.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		hr.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		hr.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(hr)
	c.durations.Observe(time.Since(start), req.Method)

	if err != nil {
		c.requests.Increment(req.Method, "error")
		c.log.Debug("api request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, &NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}

	c.requests.Increment(req.Method, strconv.Itoa(resp.StatusCode))
	c.log.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", hr.Header.Get("X-Request-ID"),
		"duration", time.Since(start))

	return resp, nil
}

// refresh returns a usable access token, refreshing at most once for all
// callers that observed the same stale token.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	ch := c.refreshes.DoChan(refreshKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout())
		defer cancel()

		access, refresh, err := c.creds.Tokens(rctx)
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}

		// A failed refresh already cleared the session this request used and
		// reported it.
		if access == "" && stale != "" {
			return nil, fmt.Errorf("%w: session cleared", ErrUnauthorized)
		}

		// Another caller already replaced the token we were rejected with.
		if access != "" && access != stale {
			return access, nil
		}

		if refresh == "" {
			c.refreshed.Increment("missing")
			err := fmt.Errorf("%w: no refresh token", ErrUnauthorized)
			c.authFailed(err)
			return nil, err
		}

		pair, err := c.exchange(rctx, refresh)
		if err != nil {
			c.refreshed.Increment("failed")
			if cerr := c.creds.Clear(rctx); cerr != nil {
				c.log.Error("failed to clear credentials", "error", cerr)
			}
			err = fmt.Errorf("%w: refresh: %w", ErrUnauthorized, err)
			c.authFailed(err)
			return nil, err
		}

		if err := c.creds.Update(rctx, pair); err != nil {
			return nil, fmt.Errorf("store refreshed token: %w", err)
		}

		c.refreshed.Increment("ok")
		c.log.Info("access token refreshed")

		return pair.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// exchange posts the refresh token and returns the new token pair.
func (c *Client) exchange(ctx context.Context, refresh string) (TokenPair, error) {
	req := Request{Method: http.MethodPost, Path: c.refreshPath, Body: struct{}{}}

	body, contentType, err := req.encode()
	if err != nil {
		return TokenPair{}, err
	}

	resp, err := c.send(ctx, req, body, contentType, refresh)
	if err != nil {
		return TokenPair{}, err
	}

	var pair TokenPair
	if err := c.decode(req, resp, &pair); err != nil {
		return TokenPair{}, err
	}
	if pair.AccessToken == "" {
		return TokenPair{}, errors.New("refresh response without access token")
	}

	return pair, nil
}

func (c *Client) authFailed(err error) {
	c.log.Warn("authentication expired", "error", err)
	if c.onAuthFailure != nil {
		c.onAuthFailure(err)
	}
}

func (c *Client) timeout() time.Duration {
	if c.httpClient.Timeout > 0 {
		return c.httpClient.Timeout
	}
	return DefaultTimeout
}

// decode closes resp.Body and maps error statuses to *StatusError.
func (c *Client) decode(req Request, resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.readStatusError(req, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}

	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.Path, err)
	}

	return nil
}

// statusError drains and closes resp, returning its *StatusError.
func (c *Client) statusError(req Request, resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	return c.readStatusError(req, resp)
}

func (c *Client) readStatusError(req Request, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	se := &StatusError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		se.Message = payload.Message
		if se.Message == "" {
			se.Message = payload.Error
		}
	} else if txt := strings.TrimSpace(string(data)); txt != "" && len(txt) < 200 {
		se.Message = txt
	}

	return se
}
