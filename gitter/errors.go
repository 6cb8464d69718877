// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoCurrentUser is returned by CurrentUser when the service answers
// with an empty user list, which happens for tokens that no longer map
// to an account.
var ErrNoCurrentUser = errors.New("gitter: no user for this token")

// APIError is a non-2xx response from the Gitter API. Callers can use
// errors.As to extract it:
//
//	var apiErr *APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound { ... }
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
	// Message is the server's "error" field, or its "message" field
	// when "error" is absent.
	Message string `json:"error"`
	// Detail is the server's "message" field when both are present.
	Detail string `json:"message"`
	// Body is the raw response body when it was not JSON.
	Body string `json:"-"`
}

func (e *APIError) Error() string {
	message := e.Message
	if message == "" {
		message = e.Detail
	} else if e.Detail != "" && e.Detail != e.Message {
		message += ": " + e.Detail
	}
	if message == "" {
		message = e.Body
	}
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("gitter: %d: %s", e.StatusCode, message)
}

// IsStatus reports whether err is or wraps an *APIError with the given
// HTTP status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}

// IsUnauthorized reports whether err is a 401, meaning the token is
// missing, expired, or revoked.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
