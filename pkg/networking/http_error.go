// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotJSON is wrapped by every ContentTypeError.
var ErrNotJSON = errors.New("response was not JSON")

// ErrResponseTooLarge is returned when a response body exceeds the size limit.
var ErrResponseTooLarge = errors.New("response body too large")

// HTTPError represents a response with a status outside the 2xx range.
type HTTPError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Method is the HTTP method of the request.
	Method string

	// URL is the requested URL.
	URL string

	// Message is the status text. The response body is never included.
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("received code %d during %s to %s", e.StatusCode, e.Method, e.URL)
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, method, url string) error {
	return &HTTPError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Message:    fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
	}
}

// IsHTTPError checks if an error is an HTTPError with the specified status code.
// If statusCode is 0, it matches any HTTPError.
func IsHTTPError(err error, statusCode int) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	if statusCode == 0 {
		return true
	}
	return httpErr.StatusCode == statusCode
}

// ContentTypeError is returned when a successful response is not declared as JSON.
type ContentTypeError struct {
	// ContentType is the received Content-Type header, empty when absent.
	ContentType string

	// URL is the requested URL.
	URL string
}

// Error implements the error interface.
func (e *ContentTypeError) Error() string {
	if e.ContentType == "" {
		return fmt.Sprintf("%s: response from %s has no content type", ErrNotJSON, e.URL)
	}
	return fmt.Sprintf("%s: response from %s has content type %q", ErrNotJSON, e.URL, e.ContentType)
}

// Unwrap returns ErrNotJSON.
func (*ContentTypeError) Unwrap() error {
	return ErrNotJSON
}

// IsContentTypeError checks if an error is a ContentTypeError.
func IsContentTypeError(err error) bool {
	var ctErr *ContentTypeError
	return errors.As(err, &ctErr)
}

// TransportError is returned when a request could not be sent or its
// response could not be received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if an error is a TransportError.
func IsTransportError(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
