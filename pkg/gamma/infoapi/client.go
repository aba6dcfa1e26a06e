// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package infoapi provides a client for the Gamma info API.
package infoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stacklok/gamma/pkg/gamma"
	"github.com/stacklok/gamma/pkg/networking"
)

// Client reads users with their group memberships from the info API.
type Client struct {
	authorization string
	httpClient    networking.HTTPClient
	endpoints     gamma.Endpoints
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c networking.HTTPClient) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithEndpoints targets a Gamma instance other than the production one.
func WithEndpoints(e gamma.Endpoints) Option {
	return func(client *Client) {
		client.endpoints = e
	}
}

// NewClient returns a Client that sends authorization verbatim in the
// Authorization header.
func NewClient(authorization string, opts ...Option) *Client {
	c := &Client{
		authorization: authorization,
		httpClient:    http.DefaultClient,
		endpoints:     gamma.DefaultEndpoints,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewBearerClient returns a Client that authenticates with a bearer token.
func NewBearerClient(token string, opts ...Option) *Client {
	return NewClient(networking.BearerAuthorization(token), opts...)
}

// GetUser fetches a user together with every group they are a member of.
func (c *Client) GetUser(ctx context.Context, id gamma.UserID) (*gamma.UserWithGroups, error) {
	result, err := networking.FetchJSON[gamma.UserWithGroups](
		ctx, c.httpClient, c.endpoints.InfoAPIUser(id),
		networking.WithAuthorization(c.authorization),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &result.Data, nil
}
