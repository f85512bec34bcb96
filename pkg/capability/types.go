// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package capability decodes on-disk capability files (spec §6.1, §4.1) — the
// legacy flat dialect and the enhanced nested dialect — into one internal
// record shape, ToolDefinition, so the rest of the gateway never has to know
// which dialect a given tool came from.
package capability

import "encoding/json"

// RoutingType tags the seven backend kinds a local tool can be routed through.
type RoutingType string

const (
	RoutingSubprocess RoutingType = "subprocess"
	RoutingHTTP       RoutingType = "http"
	RoutingGRPC       RoutingType = "grpc"
	RoutingGraphQL    RoutingType = "graphql"
	RoutingSSE        RoutingType = "sse"
	RoutingWebSocket  RoutingType = "websocket"
	RoutingLLM        RoutingType = "llm"
)

// Routing is the tagged RoutingConfig variant from spec §3/§4.4. Config holds
// the variant-specific fields as a generic map so pkg/template can walk every
// string field uniformly; pkg/router type-asserts the fields it needs per Type.
type Routing struct {
	Type   RoutingType    `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
}

// ToolDefinition is the unified internal record both dialects lower into.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
	Routing     Routing         `json:"routing"`
	Hidden      bool            `json:"hidden"`
	Enabled     bool            `json:"enabled"`
	// Annotations carries MCP hints (read-only/destructive) and the optional
	// enhanced-dialect blocks (classification, discovery_metadata,
	// mcp_capabilities, security) verbatim, keyed by block name.
	Annotations map[string]any `json:"annotations,omitempty"`
	// PromptRefs/ResourceRefs are optional references to PromptTemplate/ResourceTemplate IDs.
	PromptRefs   []string `json:"promptRefs,omitempty"`
	ResourceRefs []string `json:"resourceRefs,omitempty"`

	// SourcePath is the capability file this tool was decoded from, used by
	// the registry to report duplicate-name startup errors naming both files.
	SourcePath string `json:"-"`
}

// PromptArgument is one entry in a PromptTemplate's ordered argument list.
type PromptArgument struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// PromptMessage is one role-tagged text message a PromptTemplate renders.
type PromptMessage struct {
	Role string `json:"role" yaml:"role"`
	Text string `json:"text" yaml:"text"`
}

// PromptTemplate is spec §3's PromptTemplate record.
type PromptTemplate struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Arguments   []PromptArgument `json:"arguments" yaml:"arguments"`
	Messages    []PromptMessage  `json:"messages" yaml:"messages"`
	SourcePath  string           `json:"-"`
}

// ResourceTemplate is spec §3's ResourceTemplate record. Provider carries
// whichever binding the file declares (file path, generator reference, …) as
// a generic map, since the provider shape is out of this spec's scope.
type ResourceTemplate struct {
	URI         string         `json:"uri" yaml:"uri"`
	ContentType string         `json:"content_type" yaml:"content_type"`
	Provider    map[string]any `json:"provider" yaml:"provider"`
	SourcePath  string         `json:"-"`
}

// File is spec §3's CapabilityFile: metadata plus the three catalogs a single
// on-disk file may declare.
type File struct {
	Version   string             `json:"version" yaml:"version"`
	Author    string             `json:"author" yaml:"author"`
	Tools     []ToolDefinition   `json:"tools" yaml:"tools"`
	Prompts   []PromptTemplate   `json:"prompts" yaml:"prompts"`
	Resources []ResourceTemplate `json:"resources" yaml:"resources"`
	Path      string             `json:"-"`
}
