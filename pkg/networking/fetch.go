// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// DefaultMaxResponseSize is the default maximum response body size (10MB).
	DefaultMaxResponseSize = 10 * 1024 * 1024

	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"

	// AuthorizationHeader is the header carrying credentials.
	AuthorizationHeader = "Authorization"
)

//go:generate mockgen -destination=mocks/mock_http_client.go -package=mocks -source=fetch.go HTTPClient

// HTTPClient is an interface for HTTP client operations.
// This allows for mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchResult contains the result of a successful JSON fetch operation.
type FetchResult[T any] struct {
	// Data is the parsed JSON response body.
	Data T

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Headers are the response headers.
	Headers http.Header
}

// FetchOption configures a fetch request.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	method          string
	headers         http.Header
	maxResponseSize int64
}

func newFetchOptions() *fetchOptions {
	return &fetchOptions{
		method:          http.MethodGet,
		headers:         make(http.Header),
		maxResponseSize: DefaultMaxResponseSize,
	}
}

// WithMethod sets the HTTP method for the request. The default is GET.
func WithMethod(method string) FetchOption {
	return func(opts *fetchOptions) {
		opts.method = method
	}
}

// WithHeader sets a single header on the request.
func WithHeader(key, value string) FetchOption {
	return func(opts *fetchOptions) {
		opts.headers.Set(key, value)
	}
}

// WithAuthorization sets the Authorization header to value, verbatim.
func WithAuthorization(value string) FetchOption {
	return WithHeader(AuthorizationHeader, value)
}

// WithBearerToken sets the Authorization header to "Bearer <token>".
func WithBearerToken(token string) FetchOption {
	return WithAuthorization(BearerAuthorization(token))
}

// WithMaxResponseSize sets the maximum response body size.
// If not set, DefaultMaxResponseSize is used.
func WithMaxResponseSize(size int64) FetchOption {
	return func(opts *fetchOptions) {
		opts.maxResponseSize = size
	}
}

// BearerAuthorization formats token as a bearer credential.
func BearerAuthorization(token string) string {
	return "Bearer " + token
}

// FetchJSON performs an HTTP request and decodes the JSON response body into T.
//
// The response must have a 2xx status and a Content-Type of exactly
// application/json. Failures are reported as *TransportError, *HTTPError or
// *ContentTypeError. The decoded value is not checked against the shape of T
// beyond what encoding/json does. FetchJSON never retries.
func FetchJSON[T any](
	ctx context.Context,
	client HTTPClient,
	requestURL string,
	opts ...FetchOption,
) (*FetchResult[T], error) {
	options := newFetchOptions()
	for _, opt := range opts {
		opt(options)
	}

	req, err := http.NewRequestWithContext(ctx, options.method, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range options.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: options.method, URL: requestURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain so the connection can be reused; the body is never surfaced.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, options.maxResponseSize))
		return nil, NewHTTPError(resp.StatusCode, options.method, requestURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != ContentTypeJSON {
		return nil, &ContentTypeError{ContentType: contentType, URL: requestURL}
	}

	// Read one byte past the limit so an oversized body is reported, not truncated.
	body, err := io.ReadAll(io.LimitReader(resp.Body, options.maxResponseSize+1))
	if err != nil {
		return nil, &TransportError{Method: options.method, URL: requestURL, Err: err}
	}
	if int64(len(body)) > options.maxResponseSize {
		return nil, fmt.Errorf("%w: response from %s exceeds %d bytes",
			ErrResponseTooLarge, requestURL, options.maxResponseSize)
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from %s: %w", requestURL, err)
	}

	return &FetchResult[T]{
		Data:       data,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}, nil
}
