// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/capability"
	"github.com/stacklok/vgate/pkg/conflict"
)

func TestResolve_UnknownNameErrors(t *testing.T) {
	t.Parallel()

	r := New()
	_, err := r.Resolve("nope")
	require.Error(t, err)
}

func TestResolve_LocalAndRemoteTargets(t *testing.T) {
	t.Parallel()

	local := []capability.ToolDefinition{{Name: "ping", Enabled: true}}
	remote := []conflict.RemoteCandidate{{Server: "svc", Tool: mcp.Tool{Name: "pong"}, CandidateName: "pong_svc"}}

	result := conflict.Resolve(local, remote, conflict.PolicyLocalFirst)

	r := New()
	r.Swap(result)

	target, err := r.Resolve("ping")
	require.NoError(t, err)
	assert.True(t, target.IsLocal)

	target, err = r.Resolve("pong")
	require.NoError(t, err)
	assert.False(t, target.IsLocal)
	assert.Equal(t, "svc", target.Server)
	assert.Equal(t, "pong", target.Remote)
}

func TestResolve_SwapIncrementsSnapshotID(t *testing.T) {
	t.Parallel()

	r := New()
	before := r.SnapshotID()
	r.Swap(conflict.Result{ByName: map[string]conflict.Entry{}})
	assert.Greater(t, r.SnapshotID(), before)
}

func TestResolve_ListReturnsUnifiedCatalog(t *testing.T) {
	t.Parallel()

	local := []capability.ToolDefinition{{Name: "ping", Enabled: true}}
	result := conflict.Resolve(local, nil, conflict.PolicyLocalFirst)

	r := New()
	r.Swap(result)

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, "ping", list[0].Name)
}
