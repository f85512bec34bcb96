// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/stacklok/vgate/pkg/errs"
)

// SSEVariant implements the SSE routing backend over net/http plus
// bufio.Scanner: the retrieval pack carries no dedicated SSE client library,
// so a stdlib line scanner over the "event:"/"data:" wire format is the
// grounded choice (documented in SPEC_FULL.md §3).
type SSEVariant struct {
	Client HTTPDoer
}

func (v *SSEVariant) client() HTTPDoer {
	if v.Client != nil {
		return v.Client
	}
	return http.DefaultClient
}

type sseEvent struct {
	Event string `json:"event,omitempty"`
	Data  string `json:"data"`
}

func (v *SSEVariant) Invoke(ctx context.Context, config map[string]any) (*Result, error) {
	url, err := stringField(config, "url")
	if err != nil {
		return nil, err
	}
	maxEvents := intField(config, "max_events", 50)
	eventFilter := optionalStringField(config, "event_filter", "")

	runCtx, cancel := withTimeout(ctx, timeoutField(config, "timeout_ms", 0))
	defer cancel()

	req, err := http.NewRequestWithContext(runCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.NewTransportError("building sse request", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	for k, val := range stringMapField(config, "headers") {
		req.Header.Set(k, val)
	}

	resp, err := v.client().Do(req)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errs.NewTimeoutError(fmt.Sprintf("sse connection to %s timed out", url), err)
		}
		return nil, errs.NewTransportError(fmt.Sprintf("sse connection to %s failed", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, errs.NewUpstream5xxError(fmt.Sprintf("%s returned %d", url, resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return nil, errs.NewUpstream4xxError(fmt.Sprintf("%s returned %d", url, resp.StatusCode), nil)
	}

	events, truncated, err := collectEvents(runCtx, resp, maxEvents, eventFilter)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for i, ev := range events {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if ev.Event != "" {
			sb.WriteString(ev.Event)
			sb.WriteByte(':')
		}
		sb.WriteString(ev.Data)
	}
	result := textResult(true, sb.String())
	result.Truncated = truncated
	return result, nil
}

// collectEvents reads events off resp.Body until the stream ends or
// maxEvents is reached. When the cap is hit, it returns exactly maxEvents
// events with truncated true, without reading further; a stream that had
// exactly maxEvents events is therefore also reported as truncated.
func collectEvents(ctx context.Context, resp *http.Response, maxEvents int, filter string) ([]sseEvent, bool, error) {
	scanner := bufio.NewScanner(resp.Body)
	var events []sseEvent
	var cur sseEvent

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, false, errs.NewTimeoutError("sse stream deadline exceeded", ctx.Err())
		default:
		}

		line := scanner.Text()
		switch {
		case line == "":
			if cur.Data != "" && (filter == "" || cur.Event == filter) {
				events = append(events, cur)
				if len(events) >= maxEvents {
					return events, true, nil
				}
			}
			cur = sseEvent{}
		case strings.HasPrefix(line, "event:"):
			cur.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if cur.Data != "" {
				cur.Data += "\n"
			}
			cur.Data += data
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, false, errs.NewTransportError("reading sse stream", err)
	}
	return events, false, nil
}
