// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSSession_NegotiateStoresVersionAndCapabilities(t *testing.T) {
	t.Parallel()

	s := newWSSession()
	s.negotiate(mcp.LATEST_PROTOCOL_VERSION, mcp.ClientCapabilities{})
	assert.Equal(t, mcp.LATEST_PROTOCOL_VERSION, s.protocolVersion)
}

func TestWSSession_SubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	s := newWSSession()
	assert.False(t, s.isSubscribed("file:///a"))
	s.subscribe("file:///a")
	assert.True(t, s.isSubscribed("file:///a"))
	s.unsubscribe("file:///a")
	assert.False(t, s.isSubscribed("file:///a"))
}

func TestWSSession_AwaitAndResolveServerRequest(t *testing.T) {
	t.Parallel()

	s := newWSSession()
	id, ch := s.awaitServerRequest()

	ok := s.resolveServerRequest(id, []byte(`{"ok":true}`))
	require.True(t, ok)

	result := <-ch
	assert.JSONEq(t, `{"ok":true}`, string(result))
}

func TestWSSession_ResolveUnknownIDReturnsFalse(t *testing.T) {
	t.Parallel()

	s := newWSSession()
	assert.False(t, s.resolveServerRequest(999, nil))
}

func TestWSSession_SessionIDIsStable(t *testing.T) {
	t.Parallel()

	s := newWSSession()
	assert.Equal(t, s.ID.String(), s.SessionID())
}
