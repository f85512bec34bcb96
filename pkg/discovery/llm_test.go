// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/capability"
	"github.com/stacklok/vgate/pkg/conflict"
)

func TestLLMSelector_ParsesFencedJSON(t *testing.T) {
	t.Parallel()

	tool := capability.ToolDefinition{Name: "send_email", Description: "send email"}
	candidates := []conflict.Entry{{Name: tool.Name, Origin: conflict.OriginLocal, LocalTool: &tool}}

	sel := &LLMSelector{Provider: &fakeLLMProvider{
		text: "```json\n{\"tool_name\":\"send_email\",\"arguments\":{\"to\":\"bob\"},\"confidence\":0.9}\n```",
	}}

	scores, args, err := sel.Select(context.Background(), "email bob", candidates)
	require.NoError(t, err)
	assert.Equal(t, 0.9, scores["send_email"])
	assert.Equal(t, "bob", args["send_email"]["to"])
}

func TestLLMSelector_UnknownToolNameIgnored(t *testing.T) {
	t.Parallel()

	tool := capability.ToolDefinition{Name: "send_email"}
	candidates := []conflict.Entry{{Name: tool.Name, Origin: conflict.OriginLocal, LocalTool: &tool}}

	sel := &LLMSelector{Provider: &fakeLLMProvider{
		text: `{"tool_name":"not_a_real_tool","arguments":{},"confidence":0.99}`,
	}}

	scores, _, err := sel.Select(context.Background(), "anything", candidates)
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores["send_email"])
}

func TestLLMSelector_NoProviderReturnsZeroScores(t *testing.T) {
	t.Parallel()

	tool := capability.ToolDefinition{Name: "ping"}
	candidates := []conflict.Entry{{Name: tool.Name, Origin: conflict.OriginLocal, LocalTool: &tool}}

	sel := &LLMSelector{}
	scores, _, err := sel.Select(context.Background(), "ping it", candidates)
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores["ping"])
}
