// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve implements the hybrid resolver (C8): resolve(name) returns
// either a local tool or a (server, remote name) pair using C7's mapping
// table, and list() returns the unified catalog. It holds nothing but an
// atomically-swapped snapshot pointer — catalog swaps from C2 and C6 publish
// a fresh unified snapshot here, per spec §4.8.
package resolve

import (
	"fmt"
	"sync/atomic"

	"github.com/stacklok/vgate/pkg/conflict"
)

// Target is what resolve(name) returns: exactly one of Local or Remote is set.
type Target struct {
	IsLocal bool
	Local   conflict.Entry
	Server  string
	Remote  string
}

// Resolver holds the current unified catalog snapshot.
type Resolver struct {
	snapshot   atomic.Pointer[conflict.Result]
	generation atomic.Uint64
}

// New constructs an empty Resolver; call Swap once the first merge completes.
func New() *Resolver {
	r := &Resolver{}
	r.snapshot.Store(&conflict.Result{ByName: map[string]conflict.Entry{}})
	return r
}

// Swap atomically installs a freshly computed unified catalog.
func (r *Resolver) Swap(result conflict.Result) {
	r.snapshot.Store(&result)
	r.generation.Add(1)
}

// Resolve looks up name in the current unified catalog.
func (r *Resolver) Resolve(name string) (Target, error) {
	snap := r.snapshot.Load()
	entry, ok := snap.ByName[name]
	if !ok {
		return Target{}, fmt.Errorf("unknown tool %q", name)
	}
	if entry.Origin == conflict.OriginLocal {
		return Target{IsLocal: true, Local: entry}, nil
	}
	return Target{Server: entry.Server, Remote: entry.RemoteName}, nil
}

// List returns every entry in the unified catalog.
func (r *Resolver) List() []conflict.Entry {
	snap := r.snapshot.Load()
	return append([]conflict.Entry(nil), snap.Catalog...)
}

// SnapshotID distinguishes one unified catalog generation from the next,
// used as part of C9's cache key.
func (r *Resolver) SnapshotID() uint64 {
	return r.generation.Load()
}
