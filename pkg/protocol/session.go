// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// wsSession tracks per-connection state for the custom WebSocket transport,
// per spec §4.10: the negotiated protocol version, the client's declared
// capabilities, its resource-update subscriptions, and a pending-request
// table for server-initiated requests (sampling/elicitation) awaiting the
// client's reply.
type wsSession struct {
	ID uuid.UUID

	mu              sync.Mutex
	protocolVersion string
	capabilities    mcp.ClientCapabilities
	subscriptions   map[string]bool
	nextServerID    int64
	pending         map[int64]chan json.RawMessage
}

func newWSSession() *wsSession {
	return &wsSession{
		ID:            uuid.New(),
		subscriptions: make(map[string]bool),
		pending:       make(map[int64]chan json.RawMessage),
	}
}

// SessionID satisfies mcp-go's server.ClientSession, so wsSession can be
// passed through hooks expecting that interface.
func (s *wsSession) SessionID() string {
	return s.ID.String()
}

func (s *wsSession) negotiate(version string, caps mcp.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocolVersion = version
	s.capabilities = caps
}

func (s *wsSession) subscribe(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[uri] = true
}

func (s *wsSession) unsubscribe(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscriptions, uri)
}

func (s *wsSession) isSubscribed(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions[uri]
}

// awaitServerRequest registers a reply slot for a server-initiated request
// (e.g. sampling/createMessage or elicitation/create) and returns the id to
// send and the channel its reply will arrive on.
func (s *wsSession) awaitServerRequest() (int64, chan json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextServerID++
	id := s.nextServerID
	ch := make(chan json.RawMessage, 1)
	s.pending[id] = ch
	return id, ch
}

// resolveServerRequest delivers a client reply to its waiting slot, if any.
func (s *wsSession) resolveServerRequest(id int64, result json.RawMessage) bool {
	s.mu.Lock()
	ch, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	ch <- result
	close(ch)
	return true
}
