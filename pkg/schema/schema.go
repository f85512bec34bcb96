// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package schema wraps github.com/google/jsonschema-go for the pre-invocation
// argument validation spec §4.4 requires of the router (C4): a tool's
// declared input schema validates the argument map before any routing
// variant runs.
package schema

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/stacklok/vgate/pkg/errs"
)

// Validator checks argument maps against one compiled input schema. A nil
// *Validator (no schema declared) accepts anything.
type Validator struct {
	resolved *jsonschema.Resolved
}

// Compile parses and resolves a tool's raw JSON input schema. An empty raw
// document compiles to a no-op Validator.
func Compile(raw json.RawMessage) (*Validator, error) {
	if len(raw) == 0 {
		return &Validator{}, nil
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errs.NewSchemaMismatchError("invalid input schema", err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, errs.NewSchemaMismatchError("resolving input schema", err)
	}
	return &Validator{resolved: resolved}, nil
}

// Validate checks args against the compiled schema, returning a typed
// InvalidArguments error naming the failing field path on mismatch.
func (v *Validator) Validate(args map[string]any) error {
	if v == nil || v.resolved == nil {
		return nil
	}
	if err := v.resolved.Validate(args); err != nil {
		return errs.InvalidArguments("$", err.Error())
	}
	return nil
}
