// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package registry implements the local capability registry (C2): it loads
// capability files from configured directories, rejects startup-time
// duplicate tool names, watches those directories for changes, and exposes a
// hot-reloadable, atomically-swapped snapshot of the local catalog.
package registry

import "github.com/stacklok/vgate/pkg/capability"

// ChangeKind tags one entry of a catalog diff, per spec §4.2's subscribe()
// contract.
type ChangeKind string

const (
	ToolAdded       ChangeKind = "tool_added"
	ToolChanged     ChangeKind = "tool_changed"
	ToolRemoved     ChangeKind = "tool_removed"
	PromptAdded     ChangeKind = "prompt_added"
	PromptChanged   ChangeKind = "prompt_changed"
	PromptRemoved   ChangeKind = "prompt_removed"
	ResourceAdded   ChangeKind = "resource_added"
	ResourceChanged ChangeKind = "resource_changed"
	ResourceRemoved ChangeKind = "resource_removed"
)

// ChangeEvent is one diffed change published to subscribers after a reload.
type ChangeEvent struct {
	Kind ChangeKind
	Name string
}

// Snapshot is an immutable point-in-time view of the local catalog. Readers
// always see one of these in full; there is no partial-merge state.
type Snapshot struct {
	ID        uint64
	Tools     map[string]capability.ToolDefinition
	Prompts   map[string]capability.PromptTemplate
	Resources map[string]capability.ResourceTemplate
}

func newSnapshot(id uint64) *Snapshot {
	return &Snapshot{
		ID:        id,
		Tools:     make(map[string]capability.ToolDefinition),
		Prompts:   make(map[string]capability.PromptTemplate),
		Resources: make(map[string]capability.ResourceTemplate),
	}
}

// Filter narrows List() results, per spec §4.2.
type Filter struct {
	// NamePrefix, when non-empty, keeps only tools whose name has this prefix.
	NamePrefix string
	// IncludeHidden includes tools marked hidden (excluded by default).
	IncludeHidden bool
	// IncludeDisabled includes tools with enabled=false (excluded by default).
	IncludeDisabled bool
}

func (f Filter) match(t capability.ToolDefinition) bool {
	if !f.IncludeHidden && t.Hidden {
		return false
	}
	if !f.IncludeDisabled && !t.Enabled {
		return false
	}
	if f.NamePrefix != "" && !hasPrefix(t.Name, f.NamePrefix) {
		return false
	}
	return true
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
