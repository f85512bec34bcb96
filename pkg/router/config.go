// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stacklok/vgate/pkg/errs"
)

// stringify renders an arbitrary JSON-shaped value as a string for use as an
// HTTP/subprocess payload: strings pass through verbatim, everything else is
// JSON-encoded.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func stringField(config map[string]any, key string) (string, error) {
	v, ok := config[key]
	if !ok {
		return "", errs.InvalidArguments(key, "required field is missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", errs.InvalidArguments(key, "must be a string")
	}
	return s, nil
}

func optionalStringField(config map[string]any, key, fallback string) string {
	v, ok := config[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

func stringSliceField(config map[string]any, key string) ([]string, error) {
	v, ok := config[key]
	if !ok {
		return nil, errs.InvalidArguments(key, "required field is missing")
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, errs.InvalidArguments(key, "must be an array")
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, errs.InvalidArguments(key, "array elements must be strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func stringMapField(config map[string]any, key string) map[string]string {
	v, ok := config[key]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func timeoutField(config map[string]any, key string, fallback time.Duration) time.Duration {
	v, ok := config[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return time.Duration(n) * time.Millisecond
	case int:
		return time.Duration(n) * time.Millisecond
	default:
		return fallback
	}
}

func intField(config map[string]any, key string, fallback int) int {
	v, ok := config[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

// withTimeout returns a derived context bounded by d when d > 0, plus its
// cancel func; callers must always defer the returned cancel.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
