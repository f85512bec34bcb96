// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/capability"
	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/external/manager"
	"github.com/stacklok/vgate/pkg/notify"
	"github.com/stacklok/vgate/pkg/resolve"
	"github.com/stacklok/vgate/pkg/router"
)

func newTestSurface(t *testing.T) *Surface {
	t.Helper()

	resolver := resolve.New()
	tool := capability.ToolDefinition{
		Name:        "echo",
		Description: "echoes its input",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Routing:     capability.Routing{Type: capability.RoutingSubprocess, Config: map[string]any{"command": "echo"}},
		Enabled:     true,
	}
	entry := conflict.Entry{Name: "echo", Origin: conflict.OriginLocal, LocalTool: &tool}
	resolver.Swap(conflict.Result{
		Catalog: []conflict.Entry{entry},
		ByName:  map[string]conflict.Entry{"echo": entry},
	})

	d := &Dispatcher{
		Resolver: resolver,
		Router:   router.New(router.Options{}),
		Manager:  manager.New(notify.NewBus()),
	}
	return NewSurface("vgate-test", "0.0.1", d, notify.NewBus(), nil)
}

func TestNewSurface_RegistersCatalogAndMetaTool(t *testing.T) {
	t.Parallel()

	s := newTestSurface(t)
	require.NotNil(t, s.MCPServer)
}

func TestEntryToServerTool_LocalUsesToolDefinitionMetadata(t *testing.T) {
	t.Parallel()

	s := newTestSurface(t)
	tool := capability.ToolDefinition{Name: "search", Description: "searches things"}
	entry := conflict.Entry{Name: "search", Origin: conflict.OriginLocal, LocalTool: &tool}

	st := s.entryToServerTool(entry)
	assert.Equal(t, "search", st.Tool.Name)
	assert.Equal(t, "searches things", st.Tool.Description)
}

func TestDiscoveryMetaTool_HasRequestParam(t *testing.T) {
	t.Parallel()

	s := newTestSurface(t)
	st := s.discoveryMetaTool()
	assert.Equal(t, SmartDiscoveryToolName, st.Tool.Name)
	_, ok := st.Tool.InputSchema.Properties["request"]
	assert.True(t, ok)
}

func TestHandleCatalogEvent_AppliesAddedAndRemoved(t *testing.T) {
	t.Parallel()

	s := newTestSurface(t)
	newTool := capability.ToolDefinition{Name: "fetch", Description: "fetches a url"}
	s.handleCatalogEvent(notify.Event{
		Channel: notify.ChannelToolsListChanged,
		Payload: conflict.CatalogDiff{
			Added:   []conflict.Entry{{Name: "fetch", Origin: conflict.OriginLocal, LocalTool: &newTool}},
			Removed: []string{"echo"},
		},
	})
}

func TestHandleCatalogEvent_IgnoresOtherChannels(t *testing.T) {
	t.Parallel()

	s := newTestSurface(t)
	s.handleCatalogEvent(notify.Event{Channel: notify.ChannelServerStatus, Payload: "up"})
}
