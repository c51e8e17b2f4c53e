package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/paperless/paperless-go/client/internal/shardqueue"
)

// Option configures a Client during construction in New.
// Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPClient injects a custom *http.Client. Useful for setting transport
// timeouts, tracing, custom TLS settings, etc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP request
// (including connection, TLS handshake, redirects, and reading the response).
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true.
//
// Do not enable this option in production environments as it increases
// verbosity and may include headers and payloads in logs.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			transport := c.http.Transport
			if transport == nil {
				transport = http.DefaultTransport
			}
			c.http.Transport = &debugTransport{base: transport}
		}
		return nil
	}
}

// WithoutExecutor disables the internal shardqueue executor. Useful for
// short-lived CLIs that only call synchronous endpoints; async methods panic
// on such a client.
func WithoutExecutor() Option {
	return func(c *Client) error {
		c.exec = &noOpExecutor{}
		return nil
	}
}

// WithExecutorConfig replaces the default executor with one built from cfg,
// e.g. to install an ErrorHandler for fire-and-forget write failures.
func WithExecutorConfig(cfg shardqueue.Config) Option {
	return func(c *Client) error {
		c.exec = shardqueue.NewShardExecutor(cfg)
		return nil
	}
}
