// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"github.com/mark3labs/mcp-go/server"
)

// ServeStdio runs the surface over stdin/stdout until the process's stdin
// closes or an I/O error occurs, per spec §4.10's stdio transport.
func ServeStdio(s *Surface) error {
	return server.ServeStdio(s.MCPServer)
}
