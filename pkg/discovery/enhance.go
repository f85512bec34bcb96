// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stacklok/vgate/pkg/capability"
	"github.com/stacklok/vgate/pkg/router"
)

// Enhancement is the offline-pipeline's output for one local tool: a richer
// description and a set of extracted keywords, merged back into the tool's
// discovery_metadata annotation (never into a remote tool, per spec §4.9).
type Enhancement struct {
	ToolName    string   `json:"tool_name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Enhancer runs the background description/keyword enrichment pipeline for
// local tools. It never touches remote catalog entries — the originating
// server's metadata stays authoritative, per spec §4.9.
type Enhancer struct {
	Provider router.LLMProvider
	Model    string
}

// Enhance generates one Enhancement per local tool. Tools that already carry
// discovery_metadata.keywords are left alone; this only fills gaps.
func (e *Enhancer) Enhance(ctx context.Context, tools []capability.ToolDefinition) ([]Enhancement, error) {
	if e.Provider == nil {
		return nil, nil
	}

	var out []Enhancement
	for _, t := range tools {
		if hasKeywords(t) {
			continue
		}
		enhancement, err := e.enhanceOne(ctx, t)
		if err != nil {
			return out, fmt.Errorf("enhance tool %q: %w", t.Name, err)
		}
		out = append(out, enhancement)
	}
	return out, nil
}

func hasKeywords(t capability.ToolDefinition) bool {
	meta, ok := t.Annotations["discovery_metadata"].(map[string]any)
	if !ok {
		return false
	}
	kw, ok := meta["keywords"].([]any)
	return ok && len(kw) > 0
}

func (e *Enhancer) enhanceOne(ctx context.Context, t capability.ToolDefinition) (Enhancement, error) {
	prompt := fmt.Sprintf(
		"Given this tool's name %q and current description %q, respond with JSON only: "+
			"{\"description\": a one-sentence richer description, \"keywords\": an array of 3-8 lowercase keywords}.",
		t.Name, t.Description,
	)
	text, err := e.Provider.Complete(ctx, e.Model, prompt, 0, 256)
	if err != nil {
		return Enhancement{}, err
	}

	var parsed struct {
		Description string   `json:"description"`
		Keywords    []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return Enhancement{}, fmt.Errorf("non-JSON enhancement response: %w", err)
	}
	return Enhancement{ToolName: t.Name, Description: parsed.Description, Keywords: parsed.Keywords}, nil
}

// ApplyTo merges enhancements into a catalog's local tools in place,
// populating discovery_metadata.keywords and, when the tool has no
// description of its own, the richer generated one. Never applied to remote
// entries by construction, since only capability.ToolDefinition is accepted.
func ApplyTo(tools []capability.ToolDefinition, enhancements []Enhancement) {
	byName := make(map[string]Enhancement, len(enhancements))
	for _, e := range enhancements {
		byName[e.ToolName] = e
	}
	for i := range tools {
		e, ok := byName[tools[i].Name]
		if !ok {
			continue
		}
		if strings.TrimSpace(tools[i].Description) == "" {
			tools[i].Description = e.Description
		}
		if tools[i].Annotations == nil {
			tools[i].Annotations = map[string]any{}
		}
		meta, _ := tools[i].Annotations["discovery_metadata"].(map[string]any)
		if meta == nil {
			meta = map[string]any{}
		}
		kw := make([]any, len(e.Keywords))
		for j, k := range e.Keywords {
			kw[j] = k
		}
		meta["keywords"] = kw
		tools[i].Annotations["discovery_metadata"] = meta
	}
}
