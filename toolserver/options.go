/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolserver

import (
	"errors"
	"fmt"
	"time"

	"chainguard.dev/ghinvestigator/agents/executor/retry"
	"chainguard.dev/ghinvestigator/config"
)

// Option configures a Session.
type Option func(*options) error

type options struct {
	url        string
	timeout    time.Duration
	retry      retry.RetryConfig
	readOnly   bool
	token      func() (string, error)
	clientName string
	version    string
}

func defaultOptions() *options {
	return &options{
		url:        config.DefaultMCPURL,
		timeout:    15 * time.Second,
		retry:      retry.ConnectRetryConfig(3),
		token:      config.GitHubToken,
		clientName: "ghinvestigator",
		version:    "0.1.0",
	}
}

// WithURL sets the tool server endpoint.
func WithURL(url string) Option {
	return func(o *options) error {
		if url == "" {
			return errors.New("url cannot be empty")
		}
		o.url = url
		return nil
	}
}

// WithTimeout sets the HTTP timeout for each request to the tool server.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// WithMaxRetries sets how many times a failed connect is retried.
func WithMaxRetries(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("max retries cannot be negative, got %d", n)
		}
		o.retry.MaxRetries = n
		return nil
	}
}

// WithRetryConfig replaces the connect retry policy.
func WithRetryConfig(cfg retry.RetryConfig) Option {
	return func(o *options) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid retry config: %w", err)
		}
		o.retry = cfg
		return nil
	}
}

// WithReadOnly restricts the exposed catalog to read-only tools.
func WithReadOnly(readOnly bool) Option {
	return func(o *options) error {
		o.readOnly = readOnly
		return nil
	}
}

// WithTokenFunc sets where the bearer token comes from.
// The default reads GITHUB_MCP_PAT.
func WithTokenFunc(token func() (string, error)) Option {
	return func(o *options) error {
		if token == nil {
			return errors.New("token func cannot be nil")
		}
		o.token = token
		return nil
	}
}

// WithClientInfo sets the implementation name and version sent on initialize.
func WithClientInfo(name, version string) Option {
	return func(o *options) error {
		o.clientName = name
		o.version = version
		return nil
	}
}

// FromConfig returns the options described by cfg.
func FromConfig(cfg config.MCP) []Option {
	return []Option{
		WithURL(cfg.URL),
		WithTimeout(cfg.ConnectTimeout),
		WithMaxRetries(cfg.MaxRetries),
		WithReadOnly(cfg.ReadOnly),
	}
}
