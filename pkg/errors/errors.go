// Package errors provides structured error types for scopegraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Attaching secondary (suppressed) failures to a primary error
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Definition or input validation failures, raised at declaration time
//   - GRAPH_*, CYCLE_*: Structural problems in a graph definition
//   - UNRESOLVED_*, MATERIALIZATION_*: Failures while turning a definition into scopes
//   - CLOSE_*: Failures while releasing resources
//
// # Usage
//
//	err := errors.New(errors.ErrCodeGraphStructure, "node %q does not belong to this graph", name)
//	if errors.Is(err, errors.ErrCodeGraphStructure) {
//	    // Handle structural error
//	}
//
//	// Wrap existing errors and attach cleanup failures
//	err := errors.Wrap(errors.ErrCodeMaterialization, cause, "materialize graph")
//	err.Suppress(closeErr)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Definition errors, detected at declaration time
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidName       Code = "INVALID_NODE_NAME"
	ErrCodeInvalidPattern    Code = "INVALID_PATTERN"
	ErrCodeInvalidStrategy   Code = "INVALID_STRATEGY"
	ErrCodeInvalidDefinition Code = "INVALID_DEFINITION"

	// Structural errors
	ErrCodeGraphStructure Code = "GRAPH_STRUCTURE"
	ErrCodeCycleDetected  Code = "CYCLE_DETECTED"

	// Materialization errors
	ErrCodeUnresolvedSource    Code = "UNRESOLVED_SOURCE"
	ErrCodeMaterialization     Code = "MATERIALIZATION_FAILED"
	ErrCodeAlreadyMaterialized Code = "ALREADY_MATERIALIZED"

	// Resource errors
	ErrCodeCloseFailed Code = "CLOSE_FAILED"
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNetwork     Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code, an optional cause and any number of
// suppressed secondary errors.
type Error struct {
	Code       Code    // Machine-readable error code
	Message    string  // Human-readable message
	Cause      error   // Underlying error (optional)
	Suppressed []error // Secondary failures, e.g. from cleanup (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	if n := len(e.Suppressed); n > 0 {
		fmt.Fprintf(&sb, " (%d suppressed)", n)
	}
	return sb.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
// Suppressed errors are intentionally not part of the chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Suppress attaches secondary failures to e. Nil errors are skipped.
func (e *Error) Suppress(errs ...error) *Error {
	for _, err := range errs {
		if err != nil {
			e.Suppressed = append(e.Suppressed, err)
		}
	}
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It walks the whole Unwrap chain, including joined errors, and matches both
// *Error values and typed errors that report a code through a Code method.
func Is(err error, code Code) bool {
	return walkCodes(err, func(c Code) bool { return c == code })
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var got Code
	walkCodes(err, func(c Code) bool {
		got = c
		return true
	})
	return got
}

type coder interface {
	Code() Code
}

// walkCodes visits codes depth-first, outermost first, until visit returns true.
func walkCodes(err error, visit func(Code) bool) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *Error:
		if e.Code != "" && visit(e.Code) {
			return true
		}
	case coder:
		if visit(e.Code()) {
			return true
		}
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return walkCodes(u.Unwrap(), visit)
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if walkCodes(inner, visit) {
				return true
			}
		}
	}
	return false
}

// SuppressedOf returns the suppressed errors of the outermost *Error in err.
func SuppressedOf(err error) []error {
	var e *Error
	if errors.As(err, &e) {
		return e.Suppressed
	}
	return nil
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// CycleError reports a cycle in the parent relation of a graph definition.
// Cycle lists the node names in parent-link order, starting at the node
// where the cycle was detected.
type CycleError struct {
	Cycle []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return "parent cycle detected"
	}
	return fmt.Sprintf("parent cycle detected: %s -> %s", strings.Join(e.Cycle, " -> "), e.Cycle[0])
}

// Code returns the error code for this error type.
func (e *CycleError) Code() Code { return ErrCodeCycleDetected }

// UnresolvedSourceError reports a source specification that no resolver in the
// chain could turn into artifact locations.
type UnresolvedSourceError struct {
	Node string
	Spec string
}

// Error implements the error interface.
func (e *UnresolvedSourceError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("can't resolve source [%s]", e.Spec)
	}
	return fmt.Sprintf("can't resolve source [%s] of node %q", e.Spec, e.Node)
}

// Code returns the error code for this error type.
func (e *UnresolvedSourceError) Code() Code { return ErrCodeUnresolvedSource }

// InvalidPatternError reports a malformed wildcard import pattern.
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("bad import path %q: %s", e.Pattern, e.Reason)
}

// Code returns the error code for this error type.
func (e *InvalidPatternError) Code() Code { return ErrCodeInvalidPattern }

// CloseError aggregates every failure observed while releasing a set of
// resources. None of the failures is dropped.
type CloseError struct {
	Errs []error
}

// Error implements the error interface.
func (e *CloseError) Error() string {
	switch len(e.Errs) {
	case 0:
		return "can't release all resources"
	case 1:
		return "can't release all resources: " + e.Errs[0].Error()
	}
	return fmt.Sprintf("can't release all resources: %v (and %d more)", e.Errs[0], len(e.Errs)-1)
}

// Unwrap exposes every aggregated failure to errors.Is/As.
func (e *CloseError) Unwrap() []error { return e.Errs }

// Code returns the error code for this error type.
func (e *CloseError) Code() Code { return ErrCodeCloseFailed }
