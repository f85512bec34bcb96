// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package manager implements the external MCP manager (C6): it starts one
// client.Client per configured ExternalServerSpec, supervises reconnection
// with exponential backoff, quarantines servers after too many consecutive
// failures, and republishes namespaced candidate tool names for C7.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/vgate/pkg/external/client"
	"github.com/stacklok/vgate/pkg/gwlogging"
	"github.com/stacklok/vgate/pkg/notify"
)

// QuarantineThreshold is the number of consecutive handshake failures after
// which a server is excluded from catalog merges until admin action, per
// spec §4.6.
const QuarantineThreshold = 5

// BackoffCeiling bounds the exponential reconnect backoff.
const BackoffCeiling = 2 * time.Minute

// ServerState is the manager's externally-visible view of one supervised
// server.
type ServerState string

const (
	ServerConnecting  ServerState = "connecting"
	ServerHealthy     ServerState = "healthy"
	ServerReconnecting ServerState = "reconnecting"
	ServerQuarantined ServerState = "quarantined"
)

// StatusEvent is the payload published on notify.ChannelServerStatus each
// time supervision moves a server to a new state.
type StatusEvent struct {
	Server   string
	State    ServerState
	Failures int
}

// CandidateTool is a remote tool paired with its namespaced candidate name
// (`{tool}_{server}`, fixed ordering per spec §4.6), handed to C7 for
// conflict resolution — C7 alone decides the final published name.
type CandidateTool struct {
	Server        string
	Tool          mcp.Tool
	CandidateName string
}

type managedServer struct {
	client *client.Client
	mu     sync.RWMutex
	state  ServerState
}

// Manager supervises every configured external MCP server.
type Manager struct {
	bus     *notify.Bus
	mu      sync.RWMutex
	servers map[string]*managedServer
}

// New constructs an empty Manager.
func New(bus *notify.Bus) *Manager {
	return &Manager{bus: bus, servers: make(map[string]*managedServer)}
}

// Start launches one supervised client per spec and blocks only long enough
// to kick off their connect loops; it returns immediately, with connection
// attempts continuing in background goroutines bound to ctx.
func (m *Manager) Start(ctx context.Context, specs []client.ServerSpec) {
	for _, spec := range specs {
		c := client.New(spec, m.bus)
		ms := &managedServer{client: c, state: ServerConnecting}
		m.mu.Lock()
		m.servers[spec.Name] = ms
		m.mu.Unlock()
		go m.superviseForever(ctx, ms)
	}
}

// superviseForever runs the connect/backoff/quarantine loop for one server
// until ctx is cancelled.
func (m *Manager) superviseForever(ctx context.Context, ms *managedServer) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = BackoffCeiling
	b.Multiplier = 2

	publish := func(s ServerState) {
		ms.setState(s)
		if m.bus != nil {
			m.bus.Publish(notify.ChannelServerStatus, StatusEvent{Server: ms.client.Name(), State: s, Failures: ms.client.ConsecutiveFailures()})
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}

		err := ms.client.Connect(ctx)
		if err == nil {
			publish(ServerHealthy)
			b.Reset()
			m.waitUntilDisconnected(ctx, ms)
			ms.client.ResetForRetry()
			continue
		}

		failures := ms.client.ConsecutiveFailures()
		if failures >= QuarantineThreshold {
			publish(ServerQuarantined)
			gwlogging.Warnf("external server %s quarantined after %d consecutive failures", ms.client.Name(), failures)
			m.waitForManualReset(ctx, ms)
			continue
		}

		publish(ServerReconnecting)
		delay := b.NextBackOff()
		if delay == backoff.Stop {
			delay = BackoffCeiling
		}
		gwlogging.Warnf("external server %s reconnect attempt failed, retrying in %s: %v", ms.client.Name(), delay, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		ms.client.ResetForRetry()
	}
}

// waitUntilDisconnected blocks while the client remains connected, polling
// its state; a real connection drop is detected by CallTool failures
// transitioning the client to Reconnecting, which this loop observes.
func (m *Manager) waitUntilDisconnected(ctx context.Context, ms *managedServer) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ms.client.State() != client.StateConnected {
				return
			}
		}
	}
}

// waitForManualReset blocks until ctx cancels or an operator calls
// Unquarantine for this server.
func (m *Manager) waitForManualReset(ctx context.Context, ms *managedServer) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ms.mu.RLock()
			quarantined := ms.state == ServerQuarantined
			ms.mu.RUnlock()
			if !quarantined {
				return
			}
		}
	}
}

func (ms *managedServer) setState(s ServerState) {
	ms.mu.Lock()
	ms.state = s
	ms.mu.Unlock()
}

func (ms *managedServer) getState() ServerState {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.state
}

// Unquarantine clears a quarantined server's state so supervision makes a
// fresh connect attempt; this is the "admin action" spec §4.6 mentions. The
// client's consecutive-failure count is kept until a connect succeeds, so a
// failed attempt after Unquarantine quarantines the server again.
func (m *Manager) Unquarantine(server string) error {
	m.mu.RLock()
	ms, ok := m.servers[server]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown external server %q", server)
	}
	ms.setState(ServerConnecting)
	ms.client.ResetForRetry()
	return nil
}

// ServerStates returns a snapshot of every supervised server's current state.
func (m *Manager) ServerStates() map[string]ServerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]ServerState, len(m.servers))
	for name, ms := range m.servers {
		out[name] = ms.getState()
	}
	return out
}

// Candidates returns the namespaced candidate tool set from every non
// quarantined server, for C7's conflict resolution pass. Candidate naming
// is tool-then-server (`{tool}_{server}`), a fixed ordering per spec §4.6.
func (m *Manager) Candidates() []CandidateTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []CandidateTool
	for name, ms := range m.servers {
		if ms.getState() == ServerQuarantined {
			continue
		}
		for _, tool := range ms.client.Tools() {
			out = append(out, CandidateTool{
				Server:        name,
				Tool:          tool,
				CandidateName: fmt.Sprintf("%s_%s", tool.Name, name),
			})
		}
	}
	return out
}

// Client returns the underlying client for a server name, used by the
// router to dispatch remote tool calls.
func (m *Manager) Client(server string) (*client.Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.servers[server]
	if !ok {
		return nil, false
	}
	return ms.client, true
}
