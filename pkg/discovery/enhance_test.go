// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/capability"
)

func TestEnhancer_SkipsToolsWithExistingKeywords(t *testing.T) {
	t.Parallel()

	tools := []capability.ToolDefinition{
		{Name: "ping", Annotations: map[string]any{
			"discovery_metadata": map[string]any{"keywords": []any{"ping"}},
		}},
	}

	e := &Enhancer{Provider: &fakeLLMProvider{text: `{"description":"x","keywords":["y"]}`}}
	got, err := e.Enhance(context.Background(), tools)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnhancer_GeneratesForToolsWithoutKeywords(t *testing.T) {
	t.Parallel()

	tools := []capability.ToolDefinition{{Name: "ping", Description: "pings"}}
	e := &Enhancer{Provider: &fakeLLMProvider{
		text: `{"description":"sends an ICMP echo request","keywords":["ping","network","health"]}`,
	}}

	got, err := e.Enhance(context.Background(), tools)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ping", got[0].ToolName)
	assert.Contains(t, got[0].Keywords, "network")
}

func TestEnhancer_NoProviderIsNoOp(t *testing.T) {
	t.Parallel()

	e := &Enhancer{}
	got, err := e.Enhance(context.Background(), []capability.ToolDefinition{{Name: "ping"}})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestApplyTo_FillsEmptyDescriptionAndKeywords(t *testing.T) {
	t.Parallel()

	tools := []capability.ToolDefinition{{Name: "ping", Description: ""}}
	ApplyTo(tools, []Enhancement{{ToolName: "ping", Description: "rich description", Keywords: []string{"net"}}})

	assert.Equal(t, "rich description", tools[0].Description)
	meta := tools[0].Annotations["discovery_metadata"].(map[string]any)
	assert.Contains(t, meta["keywords"], "net")
}

func TestApplyTo_KeepsExistingDescriptionWhenPresent(t *testing.T) {
	t.Parallel()

	tools := []capability.ToolDefinition{{Name: "ping", Description: "original"}}
	ApplyTo(tools, []Enhancement{{ToolName: "ping", Description: "generated", Keywords: []string{"net"}}})

	assert.Equal(t, "original", tools[0].Description)
}
