package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-Id"

// Paths holds the auth endpoint locations, which differ between backend deployments.
type Paths struct {
	Login    string
	Register string
	Probe    string
}

// DefaultPaths returns the auth endpoint defaults.
func DefaultPaths() Paths {
	return Paths{Login: "/auth/login", Register: "/auth/register", Probe: "/auth/me"}
}

// Client is a minimal HTTP SDK for the agent backend REST API.
// Calls are never retried; a 401 runs the unauthorized handler and is then returned as *HTTPError.
type Client struct {
	baseURL        string
	http           *http.Client
	tokenProvider  TokenProvider
	onUnauthorized UnauthorizedHandler
	headers        map[string]string
	requestIDs     bool
	paths          Paths
	requestHook    func(*http.Request) error
	responseHook   func(*http.Response) error
	logger         *zap.Logger
}

// New constructs a new SDK client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		paths:   DefaultPaths(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) doJSON(ctx context.Context, method, uri string, in, out interface{}) error {
	req, err := c.newRequest(ctx, method, uri, in)
	if err != nil {
		return err
	}
	if c.requestHook != nil {
		if err := c.requestHook(req); err != nil {
			return err
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("uri", uri),
			zap.String("requestId", req.Header.Get(RequestIDHeader)),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("uri", uri),
		zap.String("requestId", req.Header.Get(RequestIDHeader)),
		zap.Int("status", resp.StatusCode))
	if c.responseHook != nil {
		if err := c.responseHook(resp); err != nil {
			return err
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		herr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(b))}
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return herr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) newRequest(ctx context.Context, method, uri string, in interface{}) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return nil, err
		}
		body = buf
	}
	// A path prefix on the base URL is preserved.
	full, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(uri, "/"))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, full.String(), body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.requestIDs {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if c.tokenProvider != nil {
		tok, err := c.tokenProvider(ctx)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(tok) != "" {
			req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(tok))
		}
	}
	return req, nil
}
