// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/feed"
)

// ErrorCategory classifies command errors so scripts can decide
// whether to retry without parsing messages.
type ErrorCategory string

const (
	// CategoryValidation: bad arguments or flags. Fix the input.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: the room, message, or user does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: missing or rejected credentials.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryTransient: network failure, rate limit, or server error.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

// Error returns the underlying message without the category.
func (e *ToolError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Classify wraps err from the gitter client in a ToolError chosen by
// its HTTP status or transport failure. Errors that are already
// categorized are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return err
	}

	category := CategoryInternal
	var apiErr *gitter.APIError
	switch {
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			category = CategoryForbidden
		case apiErr.StatusCode == http.StatusNotFound:
			category = CategoryNotFound
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500:
			category = CategoryTransient
		case apiErr.StatusCode >= 400:
			category = CategoryValidation
		}
	case feed.IsTransportError(err):
		category = CategoryTransient
	}
	return &ToolError{Category: category, Err: err}
}
