// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"sync"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/vgate/pkg/errs"
	"github.com/stacklok/vgate/pkg/gwlogging"
	"github.com/stacklok/vgate/pkg/notify"
)

// rpcClient is the subset of mark3labs/mcp-go's *client.Client this package
// drives; wsRPCClient implements the same surface for the WebSocket
// transport, which the teacher's upstream never needed.
type rpcClient interface {
	Start(ctx context.Context) error
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	ListPrompts(ctx context.Context, req mcp.ListPromptsRequest) (*mcp.ListPromptsResult, error)
	ListResources(ctx context.Context, req mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	OnNotification(handler func(notification mcp.JSONRPCNotification))
	Close() error
}

// Client owns one connection to one external MCP server and the state
// machine spec §4.5 defines over its lifecycle.
type Client struct {
	spec ServerSpec
	bus  *notify.Bus

	sm *stateMachine

	mu        sync.RWMutex
	rpc       rpcClient
	tools     []mcp.Tool
	prompts   []mcp.Prompt
	resources []mcp.Resource

	consecutiveFailures int

	// sseMu serializes CallTool on the SSE transport so that only one tool
	// call is unresolved at a time.
	sseMu sync.Mutex

	// dialFunc builds the transport for this client; overridable in tests to
	// avoid a live server.
	dialFunc func(ctx context.Context) (rpcClient, error)
}

// New constructs a Client for spec, not yet connected.
func New(spec ServerSpec, bus *notify.Bus) *Client {
	c := &Client{spec: spec, bus: bus, sm: newStateMachine()}
	c.dialFunc = c.dial
	return c
}

// State returns the client's current connection state.
func (c *Client) State() State {
	return c.sm.current()
}

// Name returns the server name this client connects to.
func (c *Client) Name() string {
	return c.spec.Name
}

// ConsecutiveFailures reports how many handshake attempts have failed in a
// row since the last successful Connect, for C6's quarantine policy.
func (c *Client) ConsecutiveFailures() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.consecutiveFailures
}

// Connect performs Disconnected/Reconnecting → Connecting → Connected,
// building the transport, running the initialize handshake, and priming the
// capability caches. On failure it transitions to Failed (the manager
// decides whether to retry) and returns the failure.
func (c *Client) Connect(ctx context.Context) error {
	if !c.sm.transition(StateConnecting) {
		return errs.NewTransportError(fmt.Sprintf("client %s: cannot connect from state %s", c.spec.Name, c.sm.current()), nil)
	}

	handshakeCtx := ctx
	var cancel context.CancelFunc
	if c.spec.HandshakeTimeout > 0 {
		handshakeCtx, cancel = context.WithTimeout(ctx, c.spec.HandshakeTimeout)
		defer cancel()
	}

	rpc, err := c.dialFunc(handshakeCtx)
	if err != nil {
		c.recordFailure()
		c.sm.transition(StateFailed)
		return errs.NewHandshakeFailedError(fmt.Sprintf("dialing %s", c.spec.Name), err)
	}

	if err := rpc.Start(handshakeCtx); err != nil {
		c.recordFailure()
		c.sm.transition(StateFailed)
		return errs.NewHandshakeFailedError(fmt.Sprintf("starting transport for %s", c.spec.Name), err)
	}

	initResult, err := rpc.Initialize(handshakeCtx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "vgate", Version: "0.1.0"},
		},
	})
	if err != nil {
		_ = rpc.Close()
		c.recordFailure()
		c.sm.transition(StateFailed)
		return errs.NewHandshakeFailedError(fmt.Sprintf("initializing %s", c.spec.Name), err)
	}

	c.mu.Lock()
	c.rpc = rpc
	c.consecutiveFailures = 0
	c.mu.Unlock()

	rpc.OnNotification(func(n mcp.JSONRPCNotification) {
		c.handleNotification(ctx, n)
	})

	if err := c.refreshCapabilities(handshakeCtx, initResult); err != nil {
		gwlogging.Warnf("client %s: initial capability discovery failed: %v", c.spec.Name, err)
	}

	c.sm.transition(StateConnected)
	gwlogging.Infof("client %s: connected (protocol %s)", c.spec.Name, initResult.ProtocolVersion)
	return nil
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures++
}

func (c *Client) dial(ctx context.Context) (rpcClient, error) {
	switch c.spec.Transport {
	case TransportStdio:
		env := make([]string, 0, len(c.spec.Env))
		for k, v := range c.spec.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		return mcpclient.NewStdioMCPClient(c.spec.Command, env, c.spec.Args...)
	case TransportHTTP:
		return mcpclient.NewStreamableHttpClient(c.spec.URL)
	case TransportSSE:
		return mcpclient.NewSSEMCPClient(c.spec.URL)
	case TransportWebSocket:
		return newWSRPCClient(ctx, c.spec.URL, c.spec.Headers)
	default:
		return nil, fmt.Errorf("unsupported transport %q", c.spec.Transport)
	}
}

// handleNotification dispatches an incoming notification: list_changed
// triggers a re-fetch per spec §4.5; everything else forwards to the bus
// verbatim for subscribers (C10 sessions) to relay onward.
func (c *Client) handleNotification(ctx context.Context, n mcp.JSONRPCNotification) {
	switch n.Method {
	case "notifications/tools/list_changed", "notifications/prompts/list_changed", "notifications/resources/list_changed":
		if err := c.refreshCapabilities(ctx, nil); err != nil {
			gwlogging.Warnf("client %s: re-fetch after %s failed: %v", c.spec.Name, n.Method, err)
			return
		}
		if c.bus != nil {
			c.bus.Publish(notify.ChannelToolsListChanged, serverChangeEvent{Server: c.spec.Name})
		}
	default:
		if c.bus != nil {
			c.bus.Publish(notify.ChannelServerStatus, n)
		}
	}
}

// serverChangeEvent names which external server's catalog changed, so C6 can
// recompute only the affected candidate set.
type serverChangeEvent struct {
	Server string
}

func (c *Client) refreshCapabilities(ctx context.Context, init *mcp.InitializeResult) error {
	c.mu.RLock()
	rpc := c.rpc
	c.mu.RUnlock()
	if rpc == nil {
		return errs.NewDisconnectedError(fmt.Sprintf("client %s has no active transport", c.spec.Name), nil)
	}

	wantTools := init == nil || init.Capabilities.Tools != nil
	wantPrompts := init == nil || init.Capabilities.Prompts != nil
	wantResources := init == nil || init.Capabilities.Resources != nil

	var tools []mcp.Tool
	if wantTools {
		res, err := rpc.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			return err
		}
		tools = res.Tools
	}
	var prompts []mcp.Prompt
	if wantPrompts {
		res, err := rpc.ListPrompts(ctx, mcp.ListPromptsRequest{})
		if err == nil {
			prompts = res.Prompts
		}
	}
	var resources []mcp.Resource
	if wantResources {
		res, err := rpc.ListResources(ctx, mcp.ListResourcesRequest{})
		if err == nil {
			resources = res.Resources
		}
	}

	c.mu.Lock()
	c.tools, c.prompts, c.resources = tools, prompts, resources
	c.mu.Unlock()
	return nil
}

// Tools returns the cached tool list from the last successful discovery.
func (c *Client) Tools() []mcp.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]mcp.Tool(nil), c.tools...)
}

// Prompts returns the cached prompt list.
func (c *Client) Prompts() []mcp.Prompt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]mcp.Prompt(nil), c.prompts...)
}

// Resources returns the cached resource list.
func (c *Client) Resources() []mcp.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]mcp.Resource(nil), c.resources...)
}

// CallTool invokes a remote tool by its name on this server.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	c.mu.RLock()
	rpc := c.rpc
	state := c.sm.current()
	c.mu.RUnlock()

	if state != StateConnected || rpc == nil {
		return nil, errs.NewDisconnectedError(fmt.Sprintf("client %s is not connected (state %s)", c.spec.Name, state), nil)
	}

	if c.spec.Transport == TransportSSE {
		c.sseMu.Lock()
		defer c.sseMu.Unlock()
	}

	res, err := rpc.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.sm.transition(StateReconnecting)
			return nil, errs.NewTimeoutError(fmt.Sprintf("calling %s on %s timed out", name, c.spec.Name), err)
		}
		c.sm.transition(StateReconnecting)
		return nil, errs.NewRemoteError(fmt.Sprintf("calling %s on %s failed", name, c.spec.Name), err)
	}
	return res, nil
}

// Close tears down the underlying transport.
func (c *Client) Close() error {
	c.mu.Lock()
	rpc := c.rpc
	c.rpc = nil
	c.mu.Unlock()
	if rpc == nil {
		return nil
	}
	c.sm.transition(StateDisconnected)
	return rpc.Close()
}

// MarkFailed forces the Failed state, used by the manager once the restart
// budget is exhausted.
func (c *Client) MarkFailed() {
	c.sm.transition(StateFailed)
}

// ResetForRetry moves a Failed client back to Disconnected so the next
// Connect starts from a clean state; in any other state it does nothing.
func (c *Client) ResetForRetry() {
	if c.sm.current() == StateFailed {
		c.sm.forceReset()
	}
}
