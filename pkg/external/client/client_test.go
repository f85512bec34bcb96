// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/errs"
	"github.com/stacklok/vgate/pkg/notify"
)

type fakeRPC struct {
	startErr     error
	initResult   *mcp.InitializeResult
	initErr      error
	tools        []mcp.Tool
	callResult   *mcp.CallToolResult
	callErr      error
	notifHandler func(mcp.JSONRPCNotification)
	closed       bool
}

func (f *fakeRPC) Start(context.Context) error { return f.startErr }
func (f *fakeRPC) Initialize(context.Context, mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	return f.initResult, f.initErr
}
func (f *fakeRPC) ListTools(context.Context, mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	return &mcp.ListToolsResult{Tools: f.tools}, nil
}
func (f *fakeRPC) ListPrompts(context.Context, mcp.ListPromptsRequest) (*mcp.ListPromptsResult, error) {
	return &mcp.ListPromptsResult{}, nil
}
func (f *fakeRPC) ListResources(context.Context, mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error) {
	return &mcp.ListResourcesResult{}, nil
}
func (f *fakeRPC) CallTool(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return f.callResult, f.callErr
}
func (f *fakeRPC) OnNotification(h func(mcp.JSONRPCNotification)) { f.notifHandler = h }
func (f *fakeRPC) Close() error                                   { f.closed = true; return nil }

func newTestClient(rpc *fakeRPC) *Client {
	c := New(ServerSpec{Name: "svc", Transport: TransportHTTP}, notify.NewBus())
	c.dialFunc = func(context.Context) (rpcClient, error) { return rpc, nil }
	return c
}

func TestClient_ConnectSucceeds(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{
		initResult: &mcp.InitializeResult{ProtocolVersion: "2025-06-18"},
		tools:      []mcp.Tool{{Name: "ping"}},
	}
	// Advertise the tools capability so Connect lists tools after the handshake.
	advertise(&rpc.initResult.Capabilities.Tools)
	c := newTestClient(rpc)

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, StateConnected, c.State())
	assert.Len(t, c.Tools(), 1)
	assert.Equal(t, "ping", c.Tools()[0].Name)
}

func TestClient_ConnectFailsOnHandshakeError(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{initErr: assertErr("boom")}
	c := newTestClient(rpc)

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, c.State())
	assert.True(t, rpc.closed)

	var e *errs.Error
	require.True(t, errs.As(err, &e))
	assert.Equal(t, errs.ErrHandshakeFailed, e.Type)
	assert.Equal(t, 1, c.ConsecutiveFailures())
}

func TestClient_CallToolRequiresConnectedState(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{}
	c := newTestClient(rpc)

	_, err := c.CallTool(context.Background(), "ping", nil)
	require.Error(t, err)

	var e *errs.Error
	require.True(t, errs.As(err, &e))
	assert.Equal(t, errs.ErrDisconnected, e.Type)
}

func TestClient_NotificationTriggersRefresh(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{
		initResult: &mcp.InitializeResult{},
		tools:      []mcp.Tool{{Name: "ping"}},
	}
	c := newTestClient(rpc)
	require.NoError(t, c.Connect(context.Background()))

	rpc.tools = []mcp.Tool{{Name: "ping"}, {Name: "pong"}}
	rpc.notifHandler(mcp.JSONRPCNotification{
		Notification: mcp.Notification{Method: "notifications/tools/list_changed"},
	})

	assert.Len(t, c.Tools(), 2)
}

func TestClient_ResetForRetryAllowsReconnect(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{initErr: assertErr("boom")}
	c := newTestClient(rpc)
	require.Error(t, c.Connect(context.Background()))
	require.Equal(t, StateFailed, c.State())

	c.ResetForRetry()
	assert.Equal(t, StateDisconnected, c.State())
}

// advertise marks a server capability as present in an initialize result.
func advertise[T any](capability **T) { *capability = new(T) }

type assertErr string

func (e assertErr) Error() string { return string(e) }
