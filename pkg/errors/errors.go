// Package errors provides structured error types for psdlayout.
//
// Every failure the pipeline can report carries a machine-readable [Code] so
// callers can tell fatal conditions (a document that cannot be opened, a
// missing placeholder group, a failed render) apart from the non-fatal ones
// that are collected as warnings (an empty extraction, a configuration that
// could not be merged).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "group name is required")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDocumentOpen, origErr, "open %s", path)
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
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Fatal pipeline errors
	ErrCodeDocumentOpen  Code = "DOCUMENT_OPEN"
	ErrCodeGroupNotFound Code = "GROUP_NOT_FOUND"
	ErrCodeOutputWrite   Code = "OUTPUT_WRITE"
	ErrCodeRender        Code = "RENDER"

	// Non-fatal pipeline conditions, reported as warnings
	ErrCodeEmptyExtraction Code = "EMPTY_EXTRACTION"
	ErrCodeConfigParse     Code = "CONFIG_PARSE"
	ErrCodeConfigMerge     Code = "CONFIG_MERGE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// GroupNotFoundError is returned when the requested layer group does not
// exist. Groups lists every group name found in the document, in traversal
// order, so the user can pick the right one.
type GroupNotFoundError struct {
	Name   string
	Groups []string
}

// Error implements the error interface.
func (e *GroupNotFoundError) Error() string {
	available := "no groups found"
	if len(e.Groups) > 0 {
		available = strings.Join(e.Groups, ", ")
	}
	return fmt.Sprintf("group %q not found (available groups: %s)", e.Name, available)
}

// Code returns the error code for this error type.
func (e *GroupNotFoundError) Code() Code {
	return ErrCodeGroupNotFound
}

// NotFoundGroups returns the available group names carried by a
// GroupNotFoundError anywhere in err's chain.
func NotFoundGroups(err error) ([]string, bool) {
	var e *GroupNotFoundError
	if errors.As(err, &e) {
		return e.Groups, true
	}
	return nil, false
}
