// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/stacklok/vgate/pkg/capability"
	"github.com/stacklok/vgate/pkg/errs"
	"github.com/stacklok/vgate/pkg/gwlogging"
	"github.com/stacklok/vgate/pkg/notify"
)

// Registry is the local capability catalog. Reads go through an atomically
// swapped *Snapshot pointer; writers (initial load, reload) build a whole new
// snapshot and swap it in only once it validates clean.
type Registry struct {
	dirs     []string
	snapshot atomic.Pointer[Snapshot]
	nextID   atomic.Uint64
	bus      *notify.Bus
}

// New constructs a Registry over the given capability-file directories. Call
// Load before serving any traffic.
func New(dirs []string, bus *notify.Bus) *Registry {
	r := &Registry{dirs: dirs, bus: bus}
	r.snapshot.Store(newSnapshot(0))
	return r
}

// Load performs the initial synchronous catalog build. A duplicate tool,
// prompt, or resource name across files is a startup error naming both
// source files, per spec §4.2's invariant.
func (r *Registry) Load() error {
	snap, err := r.build()
	if err != nil {
		return err
	}
	r.snapshot.Store(snap)
	return nil
}

// current returns the live snapshot.
func (r *Registry) current() *Snapshot {
	return r.snapshot.Load()
}

// Get returns the tool definition for name, if present. It applies no
// visibility filtering (hidden/disabled tools are still fetchable by exact
// name per spec §4.2; callers needing visibility semantics use List).
func (r *Registry) Get(name string) (capability.ToolDefinition, bool) {
	t, ok := r.current().Tools[name]
	return t, ok
}

// List returns tools matching filter, sorted by name for deterministic output.
func (r *Registry) List(filter Filter) []capability.ToolDefinition {
	snap := r.current()
	out := make([]capability.ToolDefinition, 0, len(snap.Tools))
	for _, t := range snap.Tools {
		if filter.match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListPrompts returns every registered prompt template, sorted by name.
func (r *Registry) ListPrompts() []capability.PromptTemplate {
	snap := r.current()
	out := make([]capability.PromptTemplate, 0, len(snap.Prompts))
	for _, p := range snap.Prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListResources returns every registered resource template, sorted by URI.
func (r *Registry) ListResources() []capability.ResourceTemplate {
	snap := r.current()
	out := make([]capability.ResourceTemplate, 0, len(snap.Resources))
	for _, res := range snap.Resources {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// SnapshotID returns the current snapshot's monotonically increasing ID,
// used by pkg/discovery as part of its cache key.
func (r *Registry) SnapshotID() uint64 {
	return r.current().ID
}

// Reload rebuilds the catalog from disk into a staging snapshot, validates
// it, and only then swaps it in. On any validation failure the existing
// snapshot is kept unchanged and the error is returned as a health warning
// for the caller (typically the watcher) to log, per spec §4.2.
func (r *Registry) Reload() error {
	old := r.current()
	next, err := r.build()
	if err != nil {
		return err
	}
	diff := diffSnapshots(old, next)
	r.snapshot.Store(next)
	if r.bus != nil {
		for _, ev := range diff {
			r.bus.Publish(channelFor(ev.Kind), ev)
		}
	}
	return nil
}

func channelFor(k ChangeKind) string {
	switch k {
	case ToolAdded, ToolChanged, ToolRemoved:
		return notify.ChannelToolsListChanged
	case PromptAdded, PromptChanged, PromptRemoved:
		return notify.ChannelPromptsListChanged
	default:
		return notify.ChannelResourcesListChanged
	}
}

// build performs one full, independent catalog build from r.dirs without
// mutating registry state; it is safe to call concurrently with reads.
func (r *Registry) build() (*Snapshot, error) {
	id := r.nextID.Add(1)
	snap := newSnapshot(id)

	toolSource := map[string]string{}
	promptSource := map[string]string{}
	resourceSource := map[string]string{}

	var paths []string
	for _, dir := range r.dirs {
		entries, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
		if err != nil {
			return nil, errs.NewInvalidConfigError(fmt.Sprintf("globbing %s", dir), err)
		}
		more, err := filepath.Glob(filepath.Join(dir, "*.yml"))
		if err != nil {
			return nil, errs.NewInvalidConfigError(fmt.Sprintf("globbing %s", dir), err)
		}
		paths = append(paths, entries...)
		paths = append(paths, more...)
	}
	sort.Strings(paths)

	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.NewInvalidConfigError(fmt.Sprintf("reading %s", path), err)
		}
		file, err := capability.Parse(path, raw)
		if err != nil {
			return nil, err
		}

		for _, tool := range file.Tools {
			if prior, dup := toolSource[tool.Name]; dup {
				return nil, errs.NewDuplicateToolNameError(
					fmt.Sprintf("tool %q declared in both %s and %s", tool.Name, prior, path), nil)
			}
			toolSource[tool.Name] = path
			snap.Tools[tool.Name] = tool
		}
		for _, prompt := range file.Prompts {
			if prior, dup := promptSource[prompt.Name]; dup {
				return nil, errs.NewDuplicateToolNameError(
					fmt.Sprintf("prompt %q declared in both %s and %s", prompt.Name, prior, path), nil)
			}
			promptSource[prompt.Name] = path
			snap.Prompts[prompt.Name] = prompt
		}
		for _, resource := range file.Resources {
			if prior, dup := resourceSource[resource.URI]; dup {
				return nil, errs.NewDuplicateToolNameError(
					fmt.Sprintf("resource %q declared in both %s and %s", resource.URI, prior, path), nil)
			}
			resourceSource[resource.URI] = path
			snap.Resources[resource.URI] = resource
		}
	}

	gwlogging.Debugf("registry: built snapshot %d from %d files (%d tools, %d prompts, %d resources)",
		id, len(paths), len(snap.Tools), len(snap.Prompts), len(snap.Resources))
	return snap, nil
}

func diffSnapshots(old, next *Snapshot) []ChangeEvent {
	var out []ChangeEvent
	for name, t := range next.Tools {
		if prev, ok := old.Tools[name]; !ok {
			out = append(out, ChangeEvent{Kind: ToolAdded, Name: name})
		} else if !toolEqual(prev, t) {
			out = append(out, ChangeEvent{Kind: ToolChanged, Name: name})
		}
	}
	for name := range old.Tools {
		if _, ok := next.Tools[name]; !ok {
			out = append(out, ChangeEvent{Kind: ToolRemoved, Name: name})
		}
	}
	for name := range next.Prompts {
		if _, ok := old.Prompts[name]; !ok {
			out = append(out, ChangeEvent{Kind: PromptAdded, Name: name})
		}
	}
	for name := range old.Prompts {
		if _, ok := next.Prompts[name]; !ok {
			out = append(out, ChangeEvent{Kind: PromptRemoved, Name: name})
		}
	}
	for uri := range next.Resources {
		if _, ok := old.Resources[uri]; !ok {
			out = append(out, ChangeEvent{Kind: ResourceAdded, Name: uri})
		}
	}
	for uri := range old.Resources {
		if _, ok := next.Resources[uri]; !ok {
			out = append(out, ChangeEvent{Kind: ResourceRemoved, Name: uri})
		}
	}
	return out
}

func toolEqual(a, b capability.ToolDefinition) bool {
	return a.Description == b.Description &&
		a.Hidden == b.Hidden &&
		a.Enabled == b.Enabled &&
		string(a.InputSchema) == string(b.InputSchema) &&
		a.Routing.Type == b.Routing.Type &&
		routingConfigEqual(a.Routing.Config, b.Routing.Config)
}

func routingConfigEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if fmt.Sprint(v) != fmt.Sprint(bv) {
			return false
		}
	}
	return true
}
