// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package conflict implements the conflict resolver / name mapper (C7): a
// pure function of (local catalog, remote candidates, policy) that produces
// the unified catalog and a bidirectional name mapping table, per spec §4.7.
package conflict

import (
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/vgate/pkg/capability"
)

// Policy is one of the five deterministic resolution strategies spec §4.7
// names.
type Policy string

const (
	PolicyLocalFirst  Policy = "local_first"
	PolicyRemoteFirst Policy = "remote_first"
	PolicyPrefix      Policy = "prefix"
	PolicyReject      Policy = "reject"
	PolicyFirstFound  Policy = "first_found"
)

// Origin tags which side of the merge a unified entry came from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Entry is one tool in the unified catalog.
type Entry struct {
	Name       string // the final published name
	Origin     Origin
	LocalTool  *capability.ToolDefinition // set when Origin == OriginLocal
	Server     string                     // set when Origin == OriginRemote
	RemoteName string                     // the tool's name on its origin server, when remote
	RemoteTool *mcp.Tool
}

// RemoteCandidate is one candidate tool from C6, carrying its namespaced
// candidate name and origin server.
type RemoteCandidate struct {
	Server        string
	Tool          mcp.Tool
	CandidateName string
}

// Diagnostic records a collision the Reject policy dropped.
type Diagnostic struct {
	Name   string
	Reason string
}

// Result is the output of one Resolve call: the unified catalog, the
// name-mapping table (published name → Entry), and any collision
// diagnostics.
type Result struct {
	Catalog     []Entry
	ByName      map[string]Entry
	Diagnostics []Diagnostic
}

// CatalogDiff is the payload published on notify.ChannelToolsListChanged
// whenever a new Result supersedes the previous one: the entries to
// publish and the published names to retract.
type CatalogDiff struct {
	Added   []Entry
	Removed []string
}

// Diff compares two resolved catalogs by published name, returning the
// entries added (new or changed) and the names present in prev but not in
// next.
func Diff(prev, next Result) CatalogDiff {
	diff := CatalogDiff{}
	for name, entry := range next.ByName {
		old, existed := prev.ByName[name]
		if !existed || !entriesEqual(old, entry) {
			diff.Added = append(diff.Added, entry)
		}
	}
	for name := range prev.ByName {
		if _, ok := next.ByName[name]; !ok {
			diff.Removed = append(diff.Removed, name)
		}
	}
	return diff
}

func entriesEqual(a, b Entry) bool {
	if a.Origin != b.Origin || a.Server != b.Server || a.RemoteName != b.RemoteName {
		return false
	}
	if a.Origin == OriginLocal {
		if a.LocalTool == nil || b.LocalTool == nil {
			return a.LocalTool == b.LocalTool
		}
		return a.LocalTool.Description == b.LocalTool.Description &&
			string(a.LocalTool.InputSchema) == string(b.LocalTool.InputSchema)
	}
	if a.RemoteTool == nil || b.RemoteTool == nil {
		return a.RemoteTool == b.RemoteTool
	}
	return a.RemoteTool.Description == b.RemoteTool.Description
}

// Resolve merges local and remote into one unified catalog under policy.
// Source iteration order is fixed: local tools sorted by SourcePath, then by
// name within one file, followed by the remote candidates in the order they
// are passed in — so identical inputs always produce identical outputs.
func Resolve(local []capability.ToolDefinition, remote []RemoteCandidate, policy Policy) Result {
	localSorted := append([]capability.ToolDefinition(nil), local...)
	sort.Slice(localSorted, func(i, j int) bool {
		if localSorted[i].SourcePath != localSorted[j].SourcePath {
			return localSorted[i].SourcePath < localSorted[j].SourcePath
		}
		return localSorted[i].Name < localSorted[j].Name
	})

	byName := make(map[string]Entry, len(localSorted)+len(remote))
	var diagnostics []Diagnostic

	for _, tool := range localSorted {
		t := tool
		byName[t.Name] = Entry{Name: t.Name, Origin: OriginLocal, LocalTool: &t}
	}

	for _, cand := range remote {
		tool := cand.Tool
		remoteEntry := Entry{
			Origin:     OriginRemote,
			Server:     cand.Server,
			RemoteName: tool.Name,
			RemoteTool: &tool,
		}

		switch policy {
		case PolicyPrefix:
			remoteEntry.Name = cand.CandidateName
			byName[remoteEntry.Name] = remoteEntry

		case PolicyRemoteFirst:
			remoteEntry.Name = tool.Name
			byName[remoteEntry.Name] = remoteEntry

		case PolicyLocalFirst:
			if existing, collide := byName[tool.Name]; collide && existing.Origin == OriginLocal {
				remoteEntry.Name = cand.CandidateName
				byName[remoteEntry.Name] = remoteEntry
			} else {
				remoteEntry.Name = tool.Name
				byName[remoteEntry.Name] = remoteEntry
			}

		case PolicyReject:
			if _, collide := byName[tool.Name]; collide {
				diagnostics = append(diagnostics, Diagnostic{
					Name:   tool.Name,
					Reason: fmt.Sprintf("collision on %q between local and remote server %q", tool.Name, cand.Server),
				})
				delete(byName, tool.Name)
				continue
			}
			remoteEntry.Name = tool.Name
			byName[remoteEntry.Name] = remoteEntry

		case PolicyFirstFound:
			if _, collide := byName[tool.Name]; collide {
				continue // first source in iteration order already claimed this name
			}
			remoteEntry.Name = tool.Name
			byName[remoteEntry.Name] = remoteEntry

		default:
			remoteEntry.Name = cand.CandidateName
			byName[remoteEntry.Name] = remoteEntry
		}
	}

	catalog := make([]Entry, 0, len(byName))
	for _, e := range byName {
		catalog = append(catalog, e)
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].Name < catalog[j].Name })

	return Result{Catalog: catalog, ByName: byName, Diagnostics: diagnostics}
}
