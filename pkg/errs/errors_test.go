// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "error with cause",
			err:  &Error{Type: ErrInvalidArguments, Message: "test message", Cause: errors.New("underlying error")},
			want: "invalid_arguments: test message: underlying error",
		},
		{
			name: "error without cause",
			err:  &Error{Type: ErrTransport, Message: "test message"},
			want: "transport: test message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	err := NewError(ErrTransport, "test message", cause)
	assert.Equal(t, cause, err.Unwrap())

	errNoCause := NewError(ErrTransport, "test message", nil)
	assert.Nil(t, errNoCause.Unwrap())
}

func TestError_Retryable(t *testing.T) {
	t.Parallel()

	assert.True(t, NewTimeoutError("slow", nil).Retryable())
	assert.True(t, NewTransportError("conn refused", nil).Retryable())
	assert.False(t, NewInvalidArgumentsError("bad arg", nil).Retryable())
}

func TestNewErrorConstructors(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")

	tests := []struct {
		name        string
		constructor func(string, error) *Error
		wantType    Type
	}{
		{"NewInvalidConfigError", NewInvalidConfigError, ErrInvalidConfig},
		{"NewDuplicateToolNameError", NewDuplicateToolNameError, ErrDuplicateToolName},
		{"NewInvalidYamlError", NewInvalidYamlError, ErrInvalidYaml},
		{"NewSchemaMismatchError", NewSchemaMismatchError, ErrSchemaMismatch},
		{"NewRoutingVariantMismatchError", NewRoutingVariantMismatchError, ErrRoutingVariantMismatch},
		{"NewTimeoutError", NewTimeoutError, ErrTimeout},
		{"NewTransportError", NewTransportError, ErrTransport},
		{"NewHandshakeFailedError", NewHandshakeFailedError, ErrHandshakeFailed},
		{"NewQuarantinedError", NewQuarantinedError, ErrQuarantined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.constructor("msg", cause)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, "msg", err.Message)
			assert.Equal(t, cause, err.Cause)
		})
	}
}

func TestMissingArgumentAndInvalidArguments(t *testing.T) {
	t.Parallel()

	missing := MissingArgument("city")
	assert.Equal(t, ErrMissingArgument, missing.Type)
	assert.Contains(t, missing.Message, "city")

	invalid := InvalidArguments("args.city", "expected string")
	assert.Equal(t, ErrInvalidArguments, invalid.Type)
	assert.Contains(t, invalid.Message, "args.city")
	assert.Contains(t, invalid.Message, "expected string")
}

func TestAs(t *testing.T) {
	t.Parallel()

	base := NewTimeoutError("deadline exceeded", nil)
	wrapped := error(base)

	var target *Error
	assert.True(t, As(wrapped, &target))
	assert.Equal(t, ErrTimeout, target.Type)
}
