// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/vgate/pkg/errs"
)

// enhancedMarkerKeys are the keys whose presence on a tool entry marks it as
// the enhanced/nested dialect, per spec §4.1's detection algorithm.
var enhancedMarkerKeys = []string{"core", "classification", "discovery_metadata", "mcp_capabilities", "execution"}

type rawFile struct {
	Version   string           `yaml:"version"`
	Author    string           `yaml:"author"`
	Tools     []map[string]any `yaml:"tools"`
	Prompts   []map[string]any `yaml:"prompts"`
	Resources []map[string]any `yaml:"resources"`
}

type legacyTool struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	InputSchema map[string]any `yaml:"inputSchema"`
	Routing     Routing        `yaml:"routing"`
	Hidden      bool           `yaml:"hidden"`
	Enabled     *bool          `yaml:"enabled"`
}

type enhancedTool struct {
	Name string `yaml:"name"`
	Core struct {
		Description string         `yaml:"description"`
		InputSchema map[string]any `yaml:"input_schema"`
	} `yaml:"core"`
	Routing            Routing        `yaml:"routing"`
	Classification     map[string]any `yaml:"classification"`
	DiscoveryMetadata  map[string]any `yaml:"discovery_metadata"`
	McpCapabilities    map[string]any `yaml:"mcp_capabilities"`
	Security           map[string]any `yaml:"security"`
	Hidden             bool           `yaml:"hidden"`
	Enabled            *bool          `yaml:"enabled"`
}

// Parse decodes raw YAML text from path into a File, trying both on-disk
// dialects per tool entry as spec §4.1 describes.
func Parse(path string, raw []byte) (*File, error) {
	var rf rawFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, errs.NewInvalidYamlError(fmt.Sprintf("%s: invalid yaml", path), err)
	}

	file := &File{Version: rf.Version, Author: rf.Author, Path: path}

	for i, rawTool := range rf.Tools {
		tool, err := lowerTool(rawTool)
		if err != nil {
			return nil, wrapPath(path, err)
		}
		if tool.Name == "" {
			return nil, errs.NewSchemaMismatchError(fmt.Sprintf("%s: tool[%d] missing required field \"name\"", path, i), nil)
		}
		tool.SourcePath = path
		file.Tools = append(file.Tools, *tool)
	}

	for _, rawPrompt := range rf.Prompts {
		prompt, err := lowerPrompt(rawPrompt)
		if err != nil {
			return nil, wrapPath(path, err)
		}
		prompt.SourcePath = path
		file.Prompts = append(file.Prompts, *prompt)
	}

	for _, rawResource := range rf.Resources {
		resource, err := lowerResource(rawResource)
		if err != nil {
			return nil, wrapPath(path, err)
		}
		resource.SourcePath = path
		file.Resources = append(file.Resources, *resource)
	}

	return file, nil
}

func wrapPath(path string, err error) error {
	var e *errs.Error
	if errs.As(err, &e) {
		return errs.NewError(e.Type, fmt.Sprintf("%s: %s", path, e.Message), e.Cause)
	}
	return err
}

func isEnhanced(m map[string]any) bool {
	for _, k := range enhancedMarkerKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func lowerTool(raw map[string]any) (*ToolDefinition, error) {
	body, err := yaml.Marshal(raw)
	if err != nil {
		return nil, errs.NewInvalidYamlError("re-encoding tool entry", err)
	}

	enhancedFirst := isEnhanced(raw)

	decodeEnhanced := func() (*ToolDefinition, error) {
		var et enhancedTool
		if err := yaml.Unmarshal(body, &et); err != nil {
			return nil, errs.NewInvalidYamlError("enhanced dialect decode failed", err)
		}
		return lowerEnhanced(&et)
	}
	decodeLegacy := func() (*ToolDefinition, error) {
		var lt legacyTool
		if err := yaml.Unmarshal(body, &lt); err != nil {
			return nil, errs.NewInvalidYamlError("legacy dialect decode failed", err)
		}
		return lowerLegacy(&lt)
	}

	if enhancedFirst {
		if td, err := decodeEnhanced(); err == nil {
			return td, nil
		} else if td2, err2 := decodeLegacy(); err2 == nil {
			return td2, nil
		} else {
			return nil, err // enhanced error takes priority, per spec §4.1
		}
	}

	if td, err := decodeLegacy(); err == nil {
		return td, nil
	}
	td2, enhErr := decodeEnhanced()
	if enhErr == nil {
		return td2, nil
	}
	return nil, enhErr // surface the enhanced-decode failure first, for migration visibility
}

func lowerLegacy(lt *legacyTool) (*ToolDefinition, error) {
	if err := validateRouting(lt.Routing); err != nil {
		return nil, err
	}
	schema, err := marshalSchema(lt.InputSchema)
	if err != nil {
		return nil, err
	}
	enabled := true
	if lt.Enabled != nil {
		enabled = *lt.Enabled
	}
	return &ToolDefinition{
		Name:        lt.Name,
		Description: lt.Description,
		InputSchema: schema,
		Routing:     lt.Routing,
		Hidden:      lt.Hidden,
		Enabled:     enabled,
	}, nil
}

func lowerEnhanced(et *enhancedTool) (*ToolDefinition, error) {
	if err := validateRouting(et.Routing); err != nil {
		return nil, err
	}
	schema, err := marshalSchema(et.Core.InputSchema)
	if err != nil {
		return nil, err
	}
	enabled := true
	if et.Enabled != nil {
		enabled = *et.Enabled
	}
	annotations := map[string]any{}
	if et.Classification != nil {
		annotations["classification"] = et.Classification
	}
	if et.DiscoveryMetadata != nil {
		annotations["discovery_metadata"] = et.DiscoveryMetadata
	}
	if et.McpCapabilities != nil {
		annotations["mcp_capabilities"] = et.McpCapabilities
	}
	if et.Security != nil {
		annotations["security"] = et.Security
	}
	return &ToolDefinition{
		Name:        et.Name,
		Description: et.Core.Description,
		InputSchema: schema,
		Routing:     et.Routing,
		Hidden:      et.Hidden,
		Enabled:     enabled,
		Annotations: annotations,
	}, nil
}

func marshalSchema(m map[string]any) (json.RawMessage, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, errs.NewSchemaMismatchError("input schema is not JSON-representable", err)
	}
	return b, nil
}

// routingRequiredFields lists the required fields per variant from spec §4.4's table.
var routingRequiredFields = map[RoutingType][]string{
	RoutingSubprocess: {"command", "args"},
	RoutingHTTP:       {"method", "url"},
	RoutingGRPC:       {"endpoint", "service", "method"},
	RoutingGraphQL:    {"endpoint", "query"},
	RoutingSSE:        {"url"},
	RoutingWebSocket:  {"url"},
	RoutingLLM:        {"provider", "model", "prompt_template"},
}

func validateRouting(r Routing) error {
	if r.Type == "" {
		return errs.NewSchemaMismatchError("routing.type is required", nil)
	}
	required, known := routingRequiredFields[r.Type]
	if !known {
		return errs.NewRoutingVariantMismatchError(fmt.Sprintf("unknown routing type %q", r.Type), nil)
	}
	for _, field := range required {
		if _, ok := r.Config[field]; !ok {
			return errs.NewRoutingVariantMismatchError(
				fmt.Sprintf("routing type %q missing required field %q", r.Type, field), nil)
		}
	}
	return nil
}

func lowerPrompt(raw map[string]any) (*PromptTemplate, error) {
	body, err := yaml.Marshal(raw)
	if err != nil {
		return nil, errs.NewInvalidYamlError("re-encoding prompt entry", err)
	}
	var pt PromptTemplate
	if err := yaml.Unmarshal(body, &pt); err != nil {
		return nil, errs.NewInvalidYamlError("prompt decode failed", err)
	}
	if pt.Name == "" {
		return nil, errs.NewSchemaMismatchError("prompt missing required field \"name\"", nil)
	}
	return &pt, nil
}

func lowerResource(raw map[string]any) (*ResourceTemplate, error) {
	body, err := yaml.Marshal(raw)
	if err != nil {
		return nil, errs.NewInvalidYamlError("re-encoding resource entry", err)
	}
	var rt ResourceTemplate
	if err := yaml.Unmarshal(body, &rt); err != nil {
		return nil, errs.NewInvalidYamlError("resource decode failed", err)
	}
	if rt.URI == "" {
		return nil, errs.NewSchemaMismatchError("resource missing required field \"uri\"", nil)
	}
	return &rt, nil
}
