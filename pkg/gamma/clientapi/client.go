// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package clientapi provides a client for the Gamma client API.
//
// The client API is authenticated with a static credential issued to an
// application. The credential is sent verbatim in the Authorization header of
// every request and cannot be changed after the client is constructed.
package clientapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stacklok/gamma/pkg/gamma"
	"github.com/stacklok/gamma/pkg/networking"
)

// Client reads users, groups and authorities from the client API.
// It is safe for concurrent use.
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

// NewClient returns a Client that authenticates with authorization.
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

// GetUsers lists every user visible to the client.
func (c *Client) GetUsers(ctx context.Context) ([]gamma.User, error) {
	users, err := get[[]gamma.User](ctx, c, c.endpoints.ClientAPIUsers())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser fetches a single user.
func (c *Client) GetUser(ctx context.Context, id gamma.UserID) (*gamma.User, error) {
	user, err := get[gamma.User](ctx, c, c.endpoints.ClientAPIUser(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

// GetGroups lists every group.
func (c *Client) GetGroups(ctx context.Context) ([]gamma.Group, error) {
	groups, err := get[[]gamma.Group](ctx, c, c.endpoints.ClientAPIGroups())
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// GetGroupsFor lists the groups a user is a member of, with the post they hold.
func (c *Client) GetGroupsFor(ctx context.Context, id gamma.UserID) ([]gamma.GroupWithPost, error) {
	groups, err := get[[]gamma.GroupWithPost](ctx, c, c.endpoints.ClientAPIGroupsFor(id))
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user %s: %w", id, err)
	}
	return groups, nil
}

// GetSuperGroups lists every super group.
func (c *Client) GetSuperGroups(ctx context.Context) ([]gamma.SuperGroup, error) {
	superGroups, err := get[[]gamma.SuperGroup](ctx, c, c.endpoints.ClientAPISuperGroups())
	if err != nil {
		return nil, fmt.Errorf("failed to list super groups: %w", err)
	}
	return superGroups, nil
}

// GetAuthorities lists every authority label defined for the client.
func (c *Client) GetAuthorities(ctx context.Context) ([]gamma.ClientAuthority, error) {
	authorities, err := get[[]gamma.ClientAuthority](ctx, c, c.endpoints.ClientAPIAuthorities())
	if err != nil {
		return nil, fmt.Errorf("failed to list authorities: %w", err)
	}
	return authorities, nil
}

// GetAuthoritiesFor lists the authority labels held by a user.
func (c *Client) GetAuthoritiesFor(ctx context.Context, id gamma.UserID) ([]gamma.ClientAuthority, error) {
	authorities, err := get[[]gamma.ClientAuthority](ctx, c, c.endpoints.ClientAPIAuthoritiesFor(id))
	if err != nil {
		return nil, fmt.Errorf("failed to list authorities for user %s: %w", id, err)
	}
	return authorities, nil
}

func get[T any](ctx context.Context, c *Client, url string) (T, error) {
	result, err := networking.FetchJSON[T](ctx, c.httpClient, url, networking.WithAuthorization(c.authorization))
	if err != nil {
		var zero T
		return zero, err
	}
	return result.Data, nil
}
