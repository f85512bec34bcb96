// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package client implements one external MCP client connection (C5): the
// Disconnected→Connecting→Connected→Reconnecting→Failed state machine,
// request multiplexing by correlation id, and per-transport handshake and
// capability discovery, grounded on the teacher's upstream MCP client usage
// of github.com/mark3labs/mcp-go's client package.
package client

import "sync"

// State is one node of the connection state machine spec §4.5 defines.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

// stateMachine is a small guarded state holder; transitions outside the set
// spec §4.5 names are rejected rather than silently applied.
type stateMachine struct {
	mu    sync.RWMutex
	state State
}

func newStateMachine() *stateMachine {
	return &stateMachine{state: StateDisconnected}
}

func (m *stateMachine) current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

var validTransitions = map[State]map[State]bool{
	StateDisconnected: {StateConnecting: true},
	StateConnecting:   {StateConnected: true, StateReconnecting: true, StateFailed: true, StateDisconnected: true},
	StateConnected:    {StateReconnecting: true, StateFailed: true, StateDisconnected: true},
	StateReconnecting: {StateConnected: true, StateFailed: true, StateConnecting: true},
	StateFailed:       {StateConnecting: true},
}

// transition moves to next if the move is legal, returning whether it applied.
func (m *stateMachine) transition(next State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !validTransitions[m.state][next] {
		return false
	}
	m.state = next
	return true
}

// forceReset unconditionally moves to Disconnected, used to prepare a
// Failed client for a fresh Connect attempt.
func (m *stateMachine) forceReset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateDisconnected
}
