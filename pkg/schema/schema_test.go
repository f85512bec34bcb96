// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/errs"
)

func TestCompile_EmptySchemaAcceptsAnything(t *testing.T) {
	t.Parallel()

	v, err := Compile(nil)
	require.NoError(t, err)
	assert.NoError(t, v.Validate(map[string]any{"anything": 1}))
}

func TestValidate_RequiredFieldMissing(t *testing.T) {
	t.Parallel()

	v, err := Compile([]byte(`{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}`))
	require.NoError(t, err)

	err = v.Validate(map[string]any{})
	require.Error(t, err)

	var e *errs.Error
	require.True(t, errs.As(err, &e))
	assert.Equal(t, errs.ErrInvalidArguments, e.Type)
}

func TestValidate_WrongType(t *testing.T) {
	t.Parallel()

	v, err := Compile([]byte(`{"type":"object","properties":{"count":{"type":"integer"}}}`))
	require.NoError(t, err)

	err = v.Validate(map[string]any{"count": "not-a-number"})
	assert.Error(t, err)
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	v, err := Compile([]byte(`{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}`))
	require.NoError(t, err)

	assert.NoError(t, v.Validate(map[string]any{"city": "Seattle"}))
}
