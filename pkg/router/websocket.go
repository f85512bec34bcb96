// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"github.com/stacklok/vgate/pkg/errs"
)

// WebSocketVariant implements the WebSocket routing backend: url, optional
// headers, send_message, wait_for_response, timeout_ms, per spec §4.4's
// table.
type WebSocketVariant struct{}

func (v *WebSocketVariant) Invoke(ctx context.Context, config map[string]any) (*Result, error) {
	url, err := stringField(config, "url")
	if err != nil {
		return nil, err
	}

	runCtx, cancel := withTimeout(ctx, timeoutField(config, "timeout_ms", 0))
	defer cancel()

	header := http.Header{}
	for k, val := range stringMapField(config, "headers") {
		header.Set(k, val)
	}

	conn, _, err := websocket.Dial(runCtx, url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errs.NewTimeoutError(fmt.Sprintf("websocket dial to %s timed out", url), err)
		}
		return nil, errs.NewTransportError(fmt.Sprintf("websocket dial to %s failed", url), err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if send, ok := config["send_message"]; ok && send != nil {
		payload := stringify(send)
		if err := conn.Write(runCtx, websocket.MessageText, []byte(payload)); err != nil {
			return nil, errs.NewTransportError("writing websocket message", err)
		}
	}

	waitFor, _ := config["wait_for_response"].(bool)
	if !waitFor {
		return textResult(true, ""), nil
	}

	_, data, err := conn.Read(runCtx)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errs.NewTimeoutError(fmt.Sprintf("websocket read from %s timed out", url), err)
		}
		return nil, errs.NewTransportError(fmt.Sprintf("websocket read from %s failed", url), err)
	}

	return textResult(true, string(data)), nil
}
