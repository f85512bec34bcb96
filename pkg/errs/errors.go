// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package errs defines the gateway's error taxonomy (spec §7): one Type per
// failure mode, carried through every component so callers can branch on
// machine-readable kind rather than string-matching messages.
package errs

import "fmt"

// Type identifies a class of error from the taxonomy in spec §7.
type Type string

// Configuration errors.
const (
	ErrInvalidConfig          Type = "invalid_config"
	ErrDuplicateToolName      Type = "duplicate_tool_name"
	ErrUnknownServerReference Type = "unknown_server_reference"
)

// Parsing errors (C1).
const (
	ErrInvalidYaml           Type = "invalid_yaml"
	ErrSchemaMismatch        Type = "schema_mismatch"
	ErrRoutingVariantMismatch Type = "routing_variant_mismatch"
)

// Routing errors (C4).
const (
	ErrMissingArgument  Type = "missing_argument"
	ErrInvalidArguments Type = "invalid_arguments"
	ErrTimeout          Type = "timeout"
	ErrTransport        Type = "transport"
	ErrRemoteError      Type = "remote_error"
	ErrUpstream4xx      Type = "upstream_4xx"
	ErrUpstream5xx      Type = "upstream_5xx"
	ErrGraphQlError     Type = "graphql_error"
)

// External MCP errors (C5/C6).
const (
	ErrHandshakeFailed Type = "handshake_failed"
	ErrDisconnected    Type = "disconnected"
	ErrQuarantined     Type = "quarantined"
)

// Discovery errors (C9). LowConfidence is a result kind, not surfaced as an error.
const (
	ErrNoCandidates Type = "no_candidates"
)

// retryable lists the taxonomy entries spec §7 marks as transient.
var retryable = map[Type]bool{
	ErrTimeout:   true,
	ErrTransport: true,
}

// Error is the single error type used across the gateway. Type is the
// machine-readable kind, Message is the human-readable detail, and Cause is
// the wrapped underlying error, if any.
type Error struct {
	Type    Type
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether this error's Type is transient per spec §7.
func (e *Error) Retryable() bool {
	return retryable[e.Type]
}

// NewError constructs an Error of the given Type.
func NewError(t Type, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

// As is syntactic sugar for errors.As against *Error.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func newCtor(t Type) func(message string, cause error) *Error {
	return func(message string, cause error) *Error {
		return NewError(t, message, cause)
	}
}

// One constructor per taxonomy entry, matching the teacher's pkg/errors
// convention of a typed constructor per error kind.
var (
	NewInvalidConfigError          = newCtor(ErrInvalidConfig)
	NewDuplicateToolNameError      = newCtor(ErrDuplicateToolName)
	NewUnknownServerReferenceError = newCtor(ErrUnknownServerReference)
	NewInvalidYamlError            = newCtor(ErrInvalidYaml)
	NewSchemaMismatchError         = newCtor(ErrSchemaMismatch)
	NewRoutingVariantMismatchError = newCtor(ErrRoutingVariantMismatch)
	NewMissingArgumentError        = newCtor(ErrMissingArgument)
	NewInvalidArgumentsError       = newCtor(ErrInvalidArguments)
	NewTimeoutError                = newCtor(ErrTimeout)
	NewTransportError              = newCtor(ErrTransport)
	NewRemoteError                 = newCtor(ErrRemoteError)
	NewUpstream4xxError            = newCtor(ErrUpstream4xx)
	NewUpstream5xxError            = newCtor(ErrUpstream5xx)
	NewGraphQlError                = newCtor(ErrGraphQlError)
	NewHandshakeFailedError        = newCtor(ErrHandshakeFailed)
	NewDisconnectedError           = newCtor(ErrDisconnected)
	NewQuarantinedError            = newCtor(ErrQuarantined)
	NewNoCandidatesError           = newCtor(ErrNoCandidates)
)

// MissingArgument builds the MissingArgument(name) error spec §4.3 requires.
func MissingArgument(name string) *Error {
	return NewError(ErrMissingArgument, fmt.Sprintf("missing argument %q", name), nil)
}

// InvalidArguments builds the InvalidArguments(fieldPath, reason) error spec §4.4 requires.
func InvalidArguments(fieldPath, reason string) *Error {
	return NewError(ErrInvalidArguments, fmt.Sprintf("%s: %s", fieldPath, reason), nil)
}
