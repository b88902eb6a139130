package sdk

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// TokenProvider returns a bearer token for the request.
type TokenProvider func(ctx context.Context) (string, error)

// UnauthorizedHandler is invoked for every 401 response before the call returns its error.
type UnauthorizedHandler func()

// Option customizes the SDK client.
type Option func(c *Client)

// WithHTTPClient supplies a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.http == nil {
			c.http = &http.Client{}
		}
		c.http.Timeout = d
	}
}

// WithTokenProvider supplies a bearer token provider.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) {
		c.tokenProvider = tp
	}
}

// WithUnauthorizedHandler sets the hook run on 401 responses.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// WithRequestHook adds a hook executed before every request is sent.
func WithRequestHook(hook func(*http.Request) error) Option {
	return func(c *Client) {
		c.requestHook = hook
	}
}

// WithResponseHook adds a hook executed after every response is received.
func WithResponseHook(hook func(*http.Response) error) Option {
	return func(c *Client) {
		c.responseHook = hook
	}
}

// WithHeader sets a static header on all requests.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = map[string]string{}
		}
		c.headers[key] = value
	}
}

// WithRequestID stamps every request with a fresh X-Request-Id.
func WithRequestID() Option {
	return func(c *Client) {
		c.requestIDs = true
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPaths overrides the auth endpoint paths.
func WithPaths(p Paths) Option {
	return func(c *Client) {
		if p.Login != "" {
			c.paths.Login = p.Login
		}
		if p.Register != "" {
			c.paths.Register = p.Register
		}
		if p.Probe != "" {
			c.paths.Probe = p.Probe
		}
	}
}
