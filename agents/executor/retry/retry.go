/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry runs fallible calls with capped exponential backoff.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"
)

// RetryConfig configures retry behavior for remote calls.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	// 0 means do not retry at all.
	MaxRetries int
	// BaseBackoff is the wait before the first retry. It doubles per retry.
	BaseBackoff time.Duration
	// MaxBackoff caps the doubled backoff.
	MaxBackoff time.Duration
	// MaxJitter is the upper bound of random jitter added to each wait.
	MaxJitter time.Duration
}

// Validate checks that the retry configuration has valid values.
func (c RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 {
		return errors.New("base backoff cannot be negative")
	}
	if c.MaxBackoff < 0 {
		return errors.New("max backoff cannot be negative")
	}
	if c.MaxJitter < 0 {
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// DefaultRetryConfig is tuned for model provider rate limits, which
// usually need seconds rather than milliseconds to clear.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  60 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// ConnectRetryConfig is used when establishing sessions with tool servers.
func ConnectRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:  maxRetries,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
		MaxJitter:   250 * time.Millisecond,
	}
}

// TransientStatus reports whether an HTTP status code is worth retrying:
// rate limiting, overload and gateway failures.
func TransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		529: // Anthropic "overloaded"
		return true
	}
	return false
}

// RetryWithBackoff calls fn until it succeeds, returns an error that
// isRetryable rejects, or MaxRetries retries have been spent.
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if !isRetryable(lastErr) {
			return result, lastErr
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		wait := backoff(cfg, attempt)
		clog.FromContext(ctx).With(
			"operation", operation,
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"backoff", wait,
			"error", lastErr.Error(),
		).Warn("Transient failure, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}

	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}

func backoff(cfg RetryConfig, attempt int) time.Duration {
	wait := min(cfg.BaseBackoff<<attempt, cfg.MaxBackoff)
	if cfg.MaxJitter > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(int64(cfg.MaxJitter))); err == nil {
			wait += time.Duration(n.Int64())
		}
	}
	return wait
}
