// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol implements the MCP protocol surface (C10): it republishes
// the unified catalog from C7/C8 as one MCP endpoint across stdio, HTTP+SSE,
// Streamable HTTP and WebSocket, per spec §4.10. A single Dispatcher handles
// the method set every transport shares; each transport file wires that
// Dispatcher to its wire framing.
package protocol

import (
	"context"
	"fmt"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/discovery"
	"github.com/stacklok/vgate/pkg/errs"
	"github.com/stacklok/vgate/pkg/external/manager"
	"github.com/stacklok/vgate/pkg/resolve"
	"github.com/stacklok/vgate/pkg/router"
	"github.com/stacklok/vgate/pkg/template"
)

// SmartDiscoveryToolName is the meta-tool's published name, per spec §4.9.
const SmartDiscoveryToolName = "smart_tool_discovery"

// Dispatcher routes tools/call to either the local router or a remote
// server's client, branching on resolve.Target.IsLocal. It handles tool
// calls only; list requests are not served by it.
type Dispatcher struct {
	Resolver *resolve.Resolver
	Router   *router.Router
	Manager  *manager.Manager
	Discover *discovery.Engine
}

// CallTool invokes name with args, after resolving it to a local tool or a
// remote (server, remoteName) pair. The smart-discovery meta-tool is handled
// before the catalog lookup, since it is not itself a catalog entry.
func (d *Dispatcher) CallTool(ctx context.Context, name string, args map[string]any) (*router.Result, error) {
	if name == SmartDiscoveryToolName {
		return d.callSmartDiscovery(ctx, args)
	}

	target, err := d.Resolver.Resolve(name)
	if err != nil {
		return nil, errs.NewError(errs.ErrRoutingVariantMismatch, fmt.Sprintf("unknown tool %q", name), err)
	}
	return d.invokeTarget(ctx, target, args)
}

func (d *Dispatcher) invokeTarget(ctx context.Context, target resolve.Target, args map[string]any) (*router.Result, error) {
	if target.IsLocal {
		if target.Local.LocalTool == nil {
			return nil, errs.NewError(errs.ErrRoutingVariantMismatch, "resolved local entry missing tool definition", nil)
		}
		return d.Router.Invoke(ctx, *target.Local.LocalTool, args, template.Defaults{})
	}

	client, ok := d.Manager.Client(target.Server)
	if !ok {
		return nil, errs.NewDisconnectedError(fmt.Sprintf("external server %q is not registered", target.Server), nil)
	}
	res, err := client.CallTool(ctx, target.Remote, args)
	if err != nil {
		return nil, err
	}
	return remoteResultToRouterResult(res), nil
}

// callSmartDiscovery runs the C9 pipeline and, when it selects a candidate,
// invokes it; on invocation failure it retries with the next-best candidate
// while fallback.enabled, per spec §4.9 step 5.
func (d *Dispatcher) callSmartDiscovery(ctx context.Context, args map[string]any) (*router.Result, error) {
	req := discovery.Request{
		SnapshotID: d.Resolver.SnapshotID(),
	}
	if v, ok := args["request"].(string); ok {
		req.Text = v
	}
	if v, ok := args["tool_hint"].(string); ok {
		req.ToolHint = v
	}
	if v, ok := args["confidence_threshold"].(float64); ok {
		req.ConfidenceThresh = v
	}

	outcome, err := d.Discover.Discover(ctx, req)
	if err != nil {
		return nil, err
	}
	if outcome.Selected == nil {
		return lowConfidenceResult(outcome), nil
	}

	candidate := outcome.Selected
	tried := map[string]bool{}
	for {
		tried[candidate.Entry.Name] = true
		target := targetFromEntry(candidate.Entry)
		callArgs := candidate.Arguments
		if callArgs == nil {
			callArgs = map[string]any{}
		}
		res, err := d.invokeTarget(ctx, target, callArgs)
		if err == nil {
			return res, nil
		}

		next, nerr := d.Discover.NextBest(ctx, req, candidate.Entry.Name)
		if nerr != nil || next == nil || tried[next.Entry.Name] {
			return nil, err
		}
		candidate = next
	}
}

func targetFromEntry(e conflict.Entry) resolve.Target {
	if e.Origin == conflict.OriginLocal {
		return resolve.Target{IsLocal: true, Local: e}
	}
	return resolve.Target{Server: e.Server, Remote: e.RemoteName}
}

func lowConfidenceResult(outcome *discovery.Outcome) *router.Result {
	text := "no candidate cleared the confidence threshold; top candidates: "
	for i, c := range outcome.LowConfidence {
		if i > 0 {
			text += ", "
		}
		text += fmt.Sprintf("%s (%.2f)", c.Entry.Name, c.Combined)
	}
	return &router.Result{
		Success: false,
		Content: []router.ContentSegment{{Type: "text", Text: text}},
	}
}
