// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package authcode implements the OAuth2 authorization-code flow against Gamma.
//
// A Client starts without an access token. [Client.GenerateToken] exchanges an
// authorization code for a token and stores it; from then on
// [Client.UserInfo] is authenticated with that token. There is no refresh and
// no way to drop the token again.
package authcode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"

	"golang.org/x/oauth2"

	"github.com/stacklok/gamma/pkg/gamma"
	"github.com/stacklok/gamma/pkg/networking"
)

// ErrNoToken is returned by operations that need an access token when
// GenerateToken has not succeeded yet.
var ErrNoToken = errors.New("no token has been generated yet, call GenerateToken first")

// Config is the registration of an OAuth2 client with Gamma.
type Config struct {
	// ClientID is the OAuth client ID
	ClientID string

	// ClientSecret is the OAuth client secret, sent with HTTP Basic authentication
	ClientSecret string

	// RedirectURI is where Gamma sends the user back with the authorization code
	RedirectURI string

	// Scopes are the scopes to request, space separated on the wire
	Scopes []gamma.Scope
}

// Validate checks that the configuration can be used to build a Client.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("client ID is required")
	}
	if c.RedirectURI == "" {
		return errors.New("redirect URI is required")
	}
	if !networking.IsURL(c.RedirectURI) {
		return fmt.Errorf("redirect URI %q is not an absolute http(s) URL", c.RedirectURI)
	}
	for _, s := range c.Scopes {
		if !s.Valid() {
			return fmt.Errorf("unsupported scope %q", s)
		}
	}
	return nil
}

// Client runs the authorization-code flow and holds the resulting token.
// It is safe for concurrent use; concurrent GenerateToken calls are
// last-write-wins.
type Client struct {
	config       Config
	oauth2Config *oauth2.Config
	httpClient   *http.Client
	endpoints    gamma.Endpoints

	token atomic.Pointer[oauth2.Token]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for the token exchange and for
// authenticated requests.
func WithHTTPClient(c *http.Client) Option {
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

// NewClient validates config and returns a Client without a token.
func NewClient(config Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid authorization code config: %w", err)
	}

	c := &Client{
		config:     config,
		httpClient: http.DefaultClient,
		endpoints:  gamma.DefaultEndpoints,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.oauth2Config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURI,
		Scopes:       gamma.ScopeStrings(config.Scopes),
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.endpoints.Authorize(),
			TokenURL:  c.endpoints.Token(),
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return c, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.config
}

// AuthorizeURL returns the URL to send the user to for consent. It depends
// only on the configuration and carries no state parameter.
func (c *Client) AuthorizeURL() string {
	return c.oauth2Config.AuthCodeURL("")
}

// GenerateToken exchanges code for an access token and stores it.
// The stored token is left as it was when the exchange fails.
func (c *Client) GenerateToken(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}

	var opts []oauth2.AuthCodeOption
	if len(c.config.Scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("scope", gamma.JoinScopes(c.config.Scopes)))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth2Config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", c.exchangeError(err))
	}

	c.token.Store(token)
	return token, nil
}

// exchangeError maps token endpoint failures onto the networking error types.
// The response body is dropped; only the OAuth2 error code is kept.
func (c *Client) exchangeError(err error) error {
	tokenURL := c.oauth2Config.Endpoint.TokenURL

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		httpErr := networking.NewHTTPError(retrieveErr.Response.StatusCode, http.MethodPost, tokenURL)
		if retrieveErr.ErrorCode != "" {
			return fmt.Errorf("%w: %s", httpErr, retrieveErr.ErrorCode)
		}
		return httpErr
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &networking.TransportError{Method: http.MethodPost, URL: tokenURL, Err: urlErr.Err}
	}

	return err
}

// Token returns the stored token, if any.
func (c *Client) Token() (*oauth2.Token, bool) {
	token := c.token.Load()
	return token, token != nil
}

// HasToken reports whether GenerateToken has succeeded.
func (c *Client) HasToken() bool {
	return c.token.Load() != nil
}

// UserInfo fetches the claims of the user the stored token was issued to.
// It returns ErrNoToken without any network I/O when there is no token.
func (c *Client) UserInfo(ctx context.Context) (*gamma.UserInfo, error) {
	token := c.token.Load()
	if token == nil {
		return nil, ErrNoToken
	}

	result, err := networking.FetchJSON[gamma.UserInfo](
		ctx, c.httpClient, c.endpoints.UserInfo(),
		networking.WithBearerToken(token.AccessToken),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return &result.Data, nil
}
