// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MuxConfig selects which of the MCP HTTP endpoints and the metrics endpoint
// NewMux mounts. It has no WebSocket switch: /ws is always mounted.
type MuxConfig struct {
	StreamableHTTP bool
	HTTPSSE        bool
	Metrics        http.Handler
	BaseURL        string
}

// NewMux assembles the gateway's single HTTP entrypoint: the Streamable
// HTTP and/or HTTP+SSE MCP endpoints as enabled, the hand-rolled WebSocket
// bridge in every case, and the Prometheus scrape endpoint when given,
// following the teacher's one-router-per-
// concern, chi.NewRouter-per-mount style (pkg/api/v1/*.go).
func NewMux(s *Surface, cfg MuxConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.StreamableHTTP {
		r.Mount("/mcp", NewStreamableHTTPHandler(s))
	}
	if cfg.HTTPSSE {
		r.Mount("/sse", NewHTTPSSEHandler(s, cfg.BaseURL))
	}
	r.Mount("/ws", &WebSocketHandler{Surface: s})
	if cfg.Metrics != nil {
		r.Mount("/metrics", cfg.Metrics)
	}

	return r
}
