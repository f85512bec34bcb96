// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/vgate/pkg/router"
)

// remoteResultToRouterResult adapts an external server's raw MCP response
// into the same router.Result shape local invocations return, so
// Dispatcher's callers never need to know whether a tool was local or
// remote. Content blocks this gateway doesn't specifically understand are
// rendered as their JSON form rather than dropped.
func remoteResultToRouterResult(res *mcp.CallToolResult) *router.Result {
	segments := make([]router.ContentSegment, 0, len(res.Content))
	for _, block := range res.Content {
		segments = append(segments, contentSegment(block))
	}
	return &router.Result{
		Success: !res.IsError,
		Content: segments,
	}
}

func contentSegment(block mcp.Content) router.ContentSegment {
	switch c := block.(type) {
	case mcp.TextContent:
		return router.ContentSegment{Type: "text", Text: c.Text}
	default:
		raw, err := json.Marshal(block)
		if err != nil {
			return router.ContentSegment{Type: "text", Text: ""}
		}
		return router.ContentSegment{Type: "text", Text: string(raw)}
	}
}

// routerResultToCallToolResult is the inverse conversion, used by the MCP
// protocol surface to render a router.Result (from either a local or a
// dispatched remote invocation) back into wire form.
func routerResultToCallToolResult(res *router.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(res.Content))
	for _, seg := range res.Content {
		content = append(content, mcp.TextContent{Type: "text", Text: seg.Text})
	}
	return &mcp.CallToolResult{
		Content: content,
		IsError: !res.Success,
	}
}
