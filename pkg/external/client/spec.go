// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// TransportKind names one of the four external MCP transports spec §4.5/§6.3
// lists.
type TransportKind string

const (
	TransportStdio     TransportKind = "stdio"
	TransportHTTP      TransportKind = "http"
	TransportSSE       TransportKind = "sse"
	TransportWebSocket TransportKind = "websocket"
)

// ServerSpec is one entry of spec §6.3's abstract ExternalServerSpec.
type ServerSpec struct {
	Name      string
	Transport TransportKind

	// Stdio fields.
	Command string
	Args    []string
	Env     map[string]string

	// HTTP/SSE/WebSocket fields.
	URL     string
	Headers map[string]string

	HandshakeTimeout time.Duration
	HeartbeatPeriod  time.Duration
}
