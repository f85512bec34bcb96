// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/stacklok/vgate/pkg/errs"
)

// RetryConfig tunes the fixed-delay-with-jitter, bounded-count policy spec
// §4.4 and §11's open-question decision settle on: 200ms base delay, full
// jitter, and MaxRetries retries after the first attempt (3 by default, so at
// most 4 attempts in all).
type RetryConfig struct {
	BaseDelay  time.Duration
	MaxRetries uint
}

// DefaultRetryConfig is the gateway-wide default.
var DefaultRetryConfig = RetryConfig{BaseDelay: 200 * time.Millisecond, MaxRetries: 3}

// Retrier runs router invocations with the fixed-delay+jitter bounded retry
// policy, retrying only errs.Error values marked Retryable (Timeout,
// Transport) — never application-level errors.
type Retrier struct {
	cfg RetryConfig
}

// NewRetrier constructs a Retrier; a zero RetryConfig falls back to
// DefaultRetryConfig.
func NewRetrier(cfg RetryConfig) *Retrier {
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = DefaultRetryConfig.BaseDelay
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultRetryConfig.MaxRetries
	}
	return &Retrier{cfg: cfg}
}

// Do runs fn, retrying on retryable errors with fixed-delay-plus-full-jitter
// backoff, bounded by cfg.MaxRetries.
func (r *Retrier) Do(ctx context.Context, fn func() error) error {
	op := func() (struct{}, error) {
		err := fn()
		if err == nil {
			return struct{}{}, nil
		}
		var e *errs.Error
		if errs.As(err, &e) && e.Retryable() {
			return struct{}{}, err
		}
		// Non-retryable: wrap as a permanent error so backoff.Retry stops
		// immediately instead of exhausting the retry budget.
		return struct{}{}, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&fixedJitterBackoff{base: r.cfg.BaseDelay}),
		backoff.WithMaxTries(r.cfg.MaxRetries+1),
	)
	return err
}

// fixedJitterBackoff implements backoff.BackOff with a constant base delay
// plus full jitter (spec §11's decision: fixed-delay-with-jitter, not
// exponential — that policy is reserved for the external MCP manager's
// reconnect backoff, C6).
type fixedJitterBackoff struct {
	base time.Duration
}

func (f *fixedJitterBackoff) NextBackOff() time.Duration {
	if f.base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(f.base)))
}

func (f *fixedJitterBackoff) Reset() {}
