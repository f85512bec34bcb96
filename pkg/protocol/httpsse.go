// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// NewHTTPSSEHandler builds the deprecated HTTP+SSE transport's http.Handler
// (separate GET /sse event stream and POST /message endpoints), kept for
// clients that predate the Streamable HTTP transport per spec §4.10.
func NewHTTPSSEHandler(s *Surface, baseURL string) http.Handler {
	opts := []server.SSEOption{}
	if baseURL != "" {
		opts = append(opts, server.WithBaseURL(baseURL))
	}
	return server.NewSSEServer(s.MCPServer, opts...)
}
