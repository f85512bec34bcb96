// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/mark3labs/mcp-go/mcp"
)

// WebSocketHandler serves the gateway's hand-rolled JSON-RPC-over-WebSocket
// transport — mark3labs/mcp-go ships no WS server transport, so this mirrors
// pkg/external/client's wsRPCClient from the other side of the same wire
// protocol, reusing Dispatcher for method handling and handleFrame for batch
// semantics.
type WebSocketHandler struct {
	Surface *Surface
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	sess := newWSSession()
	ctx := r.Context()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		reply := handleFrame(data, func(req rpcRequest) *rpcResponse {
			return h.dispatch(ctx, sess, req)
		})
		if reply == nil {
			continue
		}
		if err := conn.Write(ctx, websocket.MessageText, reply); err != nil {
			break
		}
	}

	conn.Close(websocket.StatusNormalClosure, "session closed")
}

func (h *WebSocketHandler) dispatch(ctx context.Context, sess *wsSession, req rpcRequest) *rpcResponse {
	var resp rpcResponse
	switch req.Method {
	case "initialize":
		resp = h.handleInitialize(sess, req)
	case "tools/list":
		resp = resultResponse(req.ID, mcp.ListToolsResult{Tools: h.listTools()})
	case "tools/call":
		resp = h.handleCallTool(ctx, req)
	case "resources/subscribe":
		resp = h.handleSubscribe(sess, req, true)
	case "resources/unsubscribe":
		resp = h.handleSubscribe(sess, req, false)
	case "ping":
		resp = resultResponse(req.ID, map[string]any{})
	default:
		resp = errorResponse(req.ID, -32601, "method not found: "+req.Method)
	}
	if req.isNotification() {
		return nil
	}
	return &resp
}

func (h *WebSocketHandler) handleInitialize(sess *wsSession, req rpcRequest) rpcResponse {
	var params mcp.InitializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}
	sess.negotiate(params.ProtocolVersion, params.Capabilities)

	result := mcp.InitializeResult{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		Capabilities: mcp.ServerCapabilities{
			Tools: &struct {
				ListChanged bool `json:"listChanged,omitempty"`
			}{ListChanged: true},
		},
		ServerInfo: mcp.Implementation{Name: "vgate", Version: "0.1.0"},
	}
	return resultResponse(req.ID, result)
}

func (h *WebSocketHandler) handleCallTool(ctx context.Context, req rpcRequest) rpcResponse {
	var params mcp.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}
	args, _ := params.Arguments.(map[string]any)
	res, err := h.Surface.Dispatcher.CallTool(ctx, params.Name, args)
	if err != nil {
		return errorResponse(req.ID, -32000, err.Error())
	}
	return resultResponse(req.ID, routerResultToCallToolResult(res))
}

func (h *WebSocketHandler) handleSubscribe(sess *wsSession, req rpcRequest, subscribe bool) rpcResponse {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, -32602, "invalid params: "+err.Error())
	}
	if subscribe {
		sess.subscribe(params.URI)
	} else {
		sess.unsubscribe(params.URI)
	}
	return resultResponse(req.ID, map[string]any{})
}

func (h *WebSocketHandler) listTools() []mcp.Tool {
	entries := h.Surface.Dispatcher.Resolver.List()
	serverTools := h.Surface.serverTools(entries)
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, st := range serverTools {
		tools = append(tools, st.Tool)
	}
	return tools
}
