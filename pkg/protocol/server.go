// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/notify"
)

// Surface owns the mark3labs/mcp-go server instance shared by every
// transport binding, and keeps its published tool set in step with the
// unified catalog via the notification bus, grounded on
// kagenti-mcp-gateway's broker.go (server.NewMCPServer/server.Hooks/
// AddTools/DeleteTools).
type Surface struct {
	MCPServer  *server.MCPServer
	Dispatcher *Dispatcher
	bus        *notify.Bus
	logger     *slog.Logger
}

// NewSurface builds the MCP server, registers the current catalog and the
// smart-discovery meta-tool, and starts a goroutine that republishes
// tools/list_changed notifications from the bus as AddTools/DeleteTools
// calls against the live server.
func NewSurface(name, version string, d *Dispatcher, bus *notify.Bus, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}

	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(func(_ context.Context, session server.ClientSession) {
		logger.Info("client session registered", "sessionID", session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(_ context.Context, session server.ClientSession) {
		logger.Info("client session unregistered", "sessionID", session.SessionID())
	})
	hooks.AddBeforeAny(func(_ context.Context, _ any, method mcp.MCPMethod, _ any) {
		logger.Debug("handling request", "method", method)
	})
	hooks.AddOnError(func(_ context.Context, _ any, method mcp.MCPMethod, _ any, err error) {
		logger.Warn("request failed", "method", method, "error", err)
	})

	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithHooks(hooks),
		server.WithToolCapabilities(true),
	)

	s := &Surface{MCPServer: mcpServer, Dispatcher: d, bus: bus, logger: logger}
	mcpServer.AddTools(s.serverTools(d.Resolver.List())...)
	mcpServer.AddTools(s.discoveryMetaTool())

	if bus != nil {
		go s.watchCatalog()
	}
	return s
}

// serverTools converts the unified catalog into mcp-go ServerTools, each
// handler delegating to the shared Dispatcher regardless of local/remote
// origin.
func (s *Surface) serverTools(entries []conflict.Entry) []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(entries))
	for _, e := range entries {
		if e.Origin == conflict.OriginLocal && e.LocalTool != nil && e.LocalTool.Hidden {
			// Hidden tools stay invocable by exact name (resolve.Resolver
			// still maps them) but are never advertised in tools/list.
			continue
		}
		tools = append(tools, s.entryToServerTool(e))
	}
	return tools
}

func (s *Surface) entryToServerTool(e conflict.Entry) server.ServerTool {
	tool := mcp.Tool{Name: e.Name}
	switch {
	case e.Origin == conflict.OriginLocal && e.LocalTool != nil:
		tool.Description = e.LocalTool.Description
		if len(e.LocalTool.InputSchema) > 0 {
			tool.RawInputSchema = e.LocalTool.InputSchema
		}
	case e.RemoteTool != nil:
		tool.Description = e.RemoteTool.Description
		tool.InputSchema = e.RemoteTool.InputSchema
	}

	name := e.Name
	return server.ServerTool{
		Tool: tool,
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := s.Dispatcher.CallTool(ctx, name, req.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return routerResultToCallToolResult(res), nil
		},
	}
}

// discoveryMetaTool publishes the smart_tool_discovery meta-tool, spec §4.9.
func (s *Surface) discoveryMetaTool() server.ServerTool {
	tool := mcp.NewTool(SmartDiscoveryToolName,
		mcp.WithDescription("Finds and invokes the best-matching tool for a natural-language request when the exact tool name is unknown."),
		mcp.WithString("request", mcp.Required(), mcp.Description("Natural-language description of the task to accomplish.")),
		mcp.WithString("tool_hint", mcp.Description("Optional substring hint narrowing the candidate set.")),
		mcp.WithNumber("confidence_threshold", mcp.Description("Overrides the configured confidence threshold for this call.")),
	)
	return server.ServerTool{
		Tool: tool,
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := s.Dispatcher.CallTool(ctx, SmartDiscoveryToolName, req.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return routerResultToCallToolResult(res), nil
		},
	}
}

// watchCatalog subscribes to the notification bus and mirrors
// tools/list_changed payloads into the live mcp-go server's tool set.
func (s *Surface) watchCatalog() {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for ev := range sub.Events() {
		s.handleCatalogEvent(ev)
	}
}

func (s *Surface) handleCatalogEvent(ev notify.Event) {
	if ev.Channel != notify.ChannelToolsListChanged {
		return
	}
	diff, ok := ev.Payload.(conflict.CatalogDiff)
	if !ok {
		return
	}
	if len(diff.Removed) > 0 {
		s.MCPServer.DeleteTools(diff.Removed...)
	}
	if len(diff.Added) > 0 {
		s.MCPServer.AddTools(s.serverTools(diff.Added)...)
	}
}
