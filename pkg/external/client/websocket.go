// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/vgate/pkg/errs"
)

// wsRPCClient is a hand-rolled JSON-RPC-over-WebSocket client implementing
// the same surface as *mcp-go/client.Client, since that library ships
// stdio/HTTP/SSE transports only. It multiplexes requests freely over one
// connection using a monotonic correlation id and a reply-slot table, per
// spec §4.5's request-multiplexing contract.
type wsRPCClient struct {
	conn *websocket.Conn

	nextID atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan rpcEnvelope
	onNotif func(mcp.JSONRPCNotification)
	closed  bool
}

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newWSRPCClient(ctx context.Context, url string, headers map[string]string) (*wsRPCClient, error) {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: h})
	if err != nil {
		return nil, err
	}
	return &wsRPCClient{conn: conn, pending: make(map[int64]chan rpcEnvelope)}, nil
}

func (w *wsRPCClient) Start(ctx context.Context) error {
	go w.readLoop(ctx)
	return nil
}

func (w *wsRPCClient) readLoop(ctx context.Context) {
	for {
		_, data, err := w.conn.Read(ctx)
		if err != nil {
			w.mu.Lock()
			for id, ch := range w.pending {
				close(ch)
				delete(w.pending, id)
			}
			w.mu.Unlock()
			return
		}
		var env rpcEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if env.ID == nil {
			if w.onNotif != nil {
				var n mcp.JSONRPCNotification
				if err := json.Unmarshal(data, &n); err == nil {
					w.onNotif(n)
				}
			}
			continue
		}
		w.mu.Lock()
		ch, ok := w.pending[*env.ID]
		if ok {
			delete(w.pending, *env.ID)
		}
		w.mu.Unlock()
		if ok {
			ch <- env
			close(ch)
		}
	}
}

func (w *wsRPCClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := w.nextID.Add(1)
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req := rpcEnvelope{JSONRPC: "2.0", ID: &id, Method: method, Params: paramsJSON}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ch := make(chan rpcEnvelope, 1)
	w.mu.Lock()
	w.pending[id] = ch
	w.mu.Unlock()

	if err := w.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		w.mu.Lock()
		delete(w.pending, id)
		w.mu.Unlock()
		return nil, err
	}

	select {
	case env, ok := <-ch:
		if !ok {
			return nil, errs.NewDisconnectedError("websocket connection closed while awaiting reply", nil)
		}
		if env.Error != nil {
			return nil, errs.NewRemoteError(fmt.Sprintf("%s: %s", method, env.Error.Message), nil)
		}
		return env.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *wsRPCClient) Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	raw, err := w.call(ctx, "initialize", req.Params)
	if err != nil {
		return nil, err
	}
	var result mcp.InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (w *wsRPCClient) ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	raw, err := w.call(ctx, "tools/list", req.Params)
	if err != nil {
		return nil, err
	}
	var result mcp.ListToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (w *wsRPCClient) ListPrompts(ctx context.Context, req mcp.ListPromptsRequest) (*mcp.ListPromptsResult, error) {
	raw, err := w.call(ctx, "prompts/list", req.Params)
	if err != nil {
		return nil, err
	}
	var result mcp.ListPromptsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (w *wsRPCClient) ListResources(ctx context.Context, req mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error) {
	raw, err := w.call(ctx, "resources/list", req.Params)
	if err != nil {
		return nil, err
	}
	var result mcp.ListResourcesResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (w *wsRPCClient) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := w.call(ctx, "tools/call", req.Params)
	if err != nil {
		return nil, err
	}
	var result mcp.CallToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (w *wsRPCClient) OnNotification(handler func(mcp.JSONRPCNotification)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onNotif = handler
}

func (w *wsRPCClient) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.conn.Close(websocket.StatusNormalClosure, "client closing")
}
