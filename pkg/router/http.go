// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stacklok/vgate/pkg/errs"
)

// HTTPDoer is the subset of *http.Client the HTTP-backed variants need; it
// lets tests substitute a fake transport without a live server.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPVariant implements the HTTP routing backend: method, url, optional
// headers, body, timeout_ms, per spec §4.4's table.
type HTTPVariant struct {
	Client HTTPDoer
}

func (v *HTTPVariant) client() HTTPDoer {
	if v.Client != nil {
		return v.Client
	}
	return http.DefaultClient
}

func (v *HTTPVariant) Invoke(ctx context.Context, config map[string]any) (*Result, error) {
	method := optionalStringField(config, "method", "GET")
	url, err := stringField(config, "url")
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if b, ok := config["body"]; ok && b != nil {
		body = strings.NewReader(stringify(b))
	}

	runCtx, cancel := withTimeout(ctx, timeoutField(config, "timeout_ms", 0))
	defer cancel()

	req, err := http.NewRequestWithContext(runCtx, method, url, body)
	if err != nil {
		return nil, errs.NewTransportError(fmt.Sprintf("building request to %s", url), err)
	}
	for k, val := range stringMapField(config, "headers") {
		req.Header.Set(k, val)
	}

	resp, err := v.client().Do(req)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errs.NewTimeoutError(fmt.Sprintf("request to %s timed out", url), err)
		}
		return nil, errs.NewTransportError(fmt.Sprintf("request to %s failed", url), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewTransportError("reading response body", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, errs.NewUpstream4xxError(fmt.Sprintf("%s returned %d: %s", url, resp.StatusCode, data), nil)
	}
	if resp.StatusCode >= 500 {
		return nil, errs.NewUpstream5xxError(fmt.Sprintf("%s returned %d: %s", url, resp.StatusCode, data), nil)
	}

	return textResult(true, string(data)), nil
}
