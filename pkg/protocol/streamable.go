// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// NewStreamableHTTPHandler builds the Streamable HTTP transport's
// http.Handler, the preferred HTTP transport per spec §4.10 (NDJSON
// streaming responses, single /mcp endpoint), grounded on the teacher's
// cmd/thv/app/mcp_serve.go server.NewStreamableHTTPServer wiring.
func NewStreamableHTTPHandler(s *Surface) http.Handler {
	return server.NewStreamableHTTPServer(
		s.MCPServer,
		server.WithEndpointPath("/mcp"),
	)
}
