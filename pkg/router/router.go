// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package router implements the agent router (C4): given a resolved local
// tool and an argument map, it validates arguments against the tool's input
// schema, templates the routing config, dispatches to the matching backend
// variant, and returns a structured Result or a typed error.
package router

import (
	"context"
	"fmt"

	"github.com/stacklok/vgate/pkg/capability"
	"github.com/stacklok/vgate/pkg/errs"
	"github.com/stacklok/vgate/pkg/schema"
	"github.com/stacklok/vgate/pkg/template"
)

// ContentSegment is one piece of a tool invocation's result, mirroring MCP's
// content-block model (text today; other kinds are additive).
type ContentSegment struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Result is the outcome of one tool invocation. Truncated is set by variants
// that cap how much of a stream or response they consume (the SSE variant's
// max_events, spec.md:315) whenever the cap is reached; a stream that ends
// with exactly that many events is reported as truncated too.
type Result struct {
	Content   []ContentSegment `json:"content"`
	Success   bool             `json:"success"`
	Truncated bool             `json:"truncated,omitempty"`
}

func textResult(success bool, text string) *Result {
	return &Result{Success: success, Content: []ContentSegment{{Type: "text", Text: text}}}
}

// Variant is one backend implementation of a routing type. Each variant
// receives the already-templated config map and returns a Result or a typed
// *errs.Error.
type Variant interface {
	Invoke(ctx context.Context, config map[string]any) (*Result, error)
}

// Router dispatches tool invocations to the variant matching their routing
// type, after schema validation and parameter templating.
type Router struct {
	variants map[capability.RoutingType]Variant
	retry    *Retrier
}

// New constructs a Router with the standard variant set.
func New(opts Options) *Router {
	r := &Router{retry: NewRetrier(opts.RetryConfig)}
	r.variants = map[capability.RoutingType]Variant{
		capability.RoutingSubprocess: &SubprocessVariant{},
		capability.RoutingHTTP:       &HTTPVariant{Client: opts.HTTPClient},
		capability.RoutingGRPC:       &GRPCVariant{},
		capability.RoutingGraphQL:    &GraphQLVariant{Client: opts.HTTPClient},
		capability.RoutingSSE:        &SSEVariant{Client: opts.HTTPClient},
		capability.RoutingWebSocket:  &WebSocketVariant{},
		capability.RoutingLLM:        &LLMVariant{Models: opts.LLMProvider},
	}
	return r
}

// Options configures a Router's variant backends.
type Options struct {
	HTTPClient  HTTPDoer
	LLMProvider LLMProvider
	RetryConfig RetryConfig
}

// Invoke validates args, templates tool.Routing.Config, and dispatches to the
// matching variant under ctx's deadline, retrying idempotent/transport
// failures per the cross-variant contract in spec §4.4.
func (r *Router) Invoke(ctx context.Context, tool capability.ToolDefinition, args map[string]any, defaults template.Defaults) (*Result, error) {
	validator, err := schema.Compile(tool.InputSchema)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(args); err != nil {
		return nil, err
	}

	variant, ok := r.variants[tool.Routing.Type]
	if !ok {
		return nil, errs.NewRoutingVariantMismatchError(
			fmt.Sprintf("no router backend registered for routing type %q", tool.Routing.Type), nil)
	}

	config, err := template.Render(tool.Routing.Config, args, defaults)
	if err != nil {
		return nil, err
	}

	idempotent := isIdempotent(tool.Routing.Type, config)

	var result *Result
	invoke := func() error {
		res, err := variant.Invoke(ctx, config)
		if err != nil {
			return err
		}
		result = res
		return nil
	}

	if idempotent {
		err = r.retry.Do(ctx, invoke)
	} else {
		err = invoke()
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// isIdempotent reports whether retries are permitted for this invocation,
// per spec §4.4: only idempotent variants and transport-level failures
// retry, never application errors. HTTP is idempotent only for safe methods.
func isIdempotent(t capability.RoutingType, config map[string]any) bool {
	switch t {
	case capability.RoutingHTTP:
		method, _ := config["method"].(string)
		switch method {
		case "GET", "HEAD", "OPTIONS", "":
			return true
		default:
			return false
		}
	case capability.RoutingGraphQL, capability.RoutingSSE, capability.RoutingWebSocket, capability.RoutingGRPC:
		return true
	default:
		return false
	}
}
