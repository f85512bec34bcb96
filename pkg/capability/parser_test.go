// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/errs"
)

func TestParse_LegacyFlat(t *testing.T) {
	t.Parallel()

	raw := []byte(`
version: "1.0"
author: acme
tools:
  - name: weather
    description: Get current weather
    inputSchema:
      type: object
      properties:
        city:
          type: string
      required: [city]
    routing:
      type: http
      config:
        method: GET
        url: "https://api.example.com/w?city={{city}}"
`)

	file, err := Parse("weather.yaml", raw)
	require.NoError(t, err)
	require.Len(t, file.Tools, 1)

	tool := file.Tools[0]
	assert.Equal(t, "weather", tool.Name)
	assert.Equal(t, "Get current weather", tool.Description)
	assert.Equal(t, RoutingHTTP, tool.Routing.Type)
	assert.Equal(t, "GET", tool.Routing.Config["method"])
	assert.True(t, tool.Enabled)
	assert.False(t, tool.Hidden)
}

func TestParse_EnhancedNested(t *testing.T) {
	t.Parallel()

	raw := []byte(`
tools:
  - name: search_docs
    core:
      description: Search internal docs
      input_schema:
        type: object
        properties:
          query: {type: string}
    routing:
      type: subprocess
      config:
        command: /usr/bin/search
        args: ["{{query}}"]
    discovery_metadata:
      keywords: [search, docs]
    enabled: false
`)

	file, err := Parse("search.yaml", raw)
	require.NoError(t, err)
	require.Len(t, file.Tools, 1)

	tool := file.Tools[0]
	assert.Equal(t, "search_docs", tool.Name)
	assert.Equal(t, "Search internal docs", tool.Description)
	assert.Equal(t, RoutingSubprocess, tool.Routing.Type)
	assert.False(t, tool.Enabled)
	meta, ok := tool.Annotations["discovery_metadata"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, meta["keywords"])
}

func TestParse_MissingName(t *testing.T) {
	t.Parallel()

	raw := []byte(`
tools:
  - description: no name here
    routing:
      type: http
      config:
        method: GET
        url: "https://x"
`)
	_, err := Parse("bad.yaml", raw)
	require.Error(t, err)

	var e *errs.Error
	require.True(t, errs.As(err, &e))
	assert.Equal(t, errs.ErrSchemaMismatch, e.Type)
}

func TestParse_RoutingVariantMismatch(t *testing.T) {
	t.Parallel()

	raw := []byte(`
tools:
  - name: broken
    description: missing url
    routing:
      type: http
      config:
        method: GET
`)
	_, err := Parse("bad.yaml", raw)
	require.Error(t, err)

	var e *errs.Error
	require.True(t, errs.As(err, &e))
	assert.Equal(t, errs.ErrRoutingVariantMismatch, e.Type)
}

func TestParse_InvalidYaml(t *testing.T) {
	t.Parallel()

	_, err := Parse("bad.yaml", []byte("tools: [this is not: valid: yaml"))
	require.Error(t, err)

	var e *errs.Error
	require.True(t, errs.As(err, &e))
	assert.Equal(t, errs.ErrInvalidYaml, e.Type)
}

func TestParse_PromptsAndResources(t *testing.T) {
	t.Parallel()

	raw := []byte(`
prompts:
  - name: greet
    description: Greeting prompt
    arguments:
      - name: user
        description: user name
        required: true
    messages:
      - role: system
        text: "You are a greeter."
resources:
  - uri: "file:///readme.md"
    content_type: "text/markdown"
    provider:
      path: /readme.md
`)
	file, err := Parse("mixed.yaml", raw)
	require.NoError(t, err)
	require.Len(t, file.Prompts, 1)
	require.Len(t, file.Resources, 1)
	assert.Equal(t, "greet", file.Prompts[0].Name)
	assert.Equal(t, "file:///readme.md", file.Resources[0].URI)
}
