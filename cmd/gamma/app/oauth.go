// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/stacklok/gamma/pkg/gamma"
	"github.com/stacklok/gamma/pkg/gamma/authcode"
	"github.com/stacklok/gamma/pkg/logger"
)

const (
	flagNoBrowser    = "no-browser"
	flagLoginTimeout = "timeout"
)

// openBrowser opens a URL in the user's browser. Tests replace it.
var openBrowser = browser.OpenURL

func newOAuthCommand() *cobra.Command {
	oauthCmd := &cobra.Command{
		Use:   "oauth",
		Short: "Run the OAuth2 authorization-code flow against Gamma",
	}

	oauthCmd.AddCommand(&cobra.Command{
		Use:   "authorize-url",
		Short: "Print the URL a user must visit to grant consent",
		Args:  cobra.NoArgs,
		RunE:  oauthAuthorizeURLCmdFunc,
	})
	oauthCmd.AddCommand(&cobra.Command{
		Use:   "exchange <code>",
		Short: "Exchange an authorization code and print the user info",
		Args:  cobra.ExactArgs(1),
		RunE:  oauthExchangeCmdFunc,
	})

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser and print the user info",
		Long: `Sign in through the browser and print the user info.

The redirect URI must point at this machine, e.g. http://localhost:8080/callback.
A local server receives the authorization code and exchanges it for a token.`,
		Args: cobra.NoArgs,
		RunE: oauthLoginCmdFunc,
	}
	loginCmd.Flags().Bool(flagNoBrowser, false, "Print the authorization URL instead of opening a browser")
	loginCmd.Flags().Duration(flagLoginTimeout, 5*time.Minute, "How long to wait for the browser callback")
	oauthCmd.AddCommand(loginCmd)

	return oauthCmd
}

func (s *session) authCode() (*authcode.Client, error) {
	if s.cfg.OAuth.ClientID == "" {
		return nil, errors.New("no OAuth client configured: run `gamma config set client-id <id>`")
	}
	if s.cfg.OAuth.ClientSecret == "" {
		return nil, errors.New("no OAuth client secret configured: run `gamma config set client-secret <secret>`")
	}
	scopes, err := s.cfg.Scopes()
	if err != nil {
		return nil, err
	}
	return authcode.NewClient(authcode.Config{
		ClientID:     s.cfg.OAuth.ClientID,
		ClientSecret: s.cfg.OAuth.ClientSecret,
		RedirectURI:  s.cfg.OAuth.RedirectURI,
		Scopes:       scopes,
	},
		authcode.WithHTTPClient(s.httpClient),
		authcode.WithEndpoints(s.cfg.Endpoints()),
	)
}

func oauthAuthorizeURLCmdFunc(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.authCode()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), client.AuthorizeURL())
	return err
}

func oauthExchangeCmdFunc(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.authCode()
	if err != nil {
		return err
	}
	return exchangeAndPrint(cmd, client, args[0])
}

func oauthLoginCmdFunc(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.authCode()
	if err != nil {
		return err
	}

	server, err := authcode.NewCallbackServer(client.Config().RedirectURI)
	if err != nil {
		return err
	}
	server.Start()
	logger.Debugw("waiting for OAuth callback", "addr", server.Addr().String(), "url", server.URL())

	authURL := client.AuthorizeURL()
	noBrowser, _ := cmd.Flags().GetBool(flagNoBrowser)
	if noBrowser {
		fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)
	} else if err := openBrowser(authURL); err != nil {
		logger.Warnf("failed to open browser: %v", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)
	}

	timeout, _ := cmd.Flags().GetDuration(flagLoginTimeout)
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	code, err := server.Wait(ctx)
	if err != nil {
		return err
	}
	return exchangeAndPrint(cmd, client, code)
}

// loginResult is what exchange and login print.
type loginResult struct {
	UserInfo    *gamma.UserInfo `json:"userinfo" yaml:"userinfo"`
	Expiry      time.Time       `json:"expiry,omitzero" yaml:"expiry,omitempty"`
	TokenClaims jwt.MapClaims   `json:"token_claims,omitempty" yaml:"token_claims,omitempty"`
	IDClaims    jwt.MapClaims   `json:"id_token_claims,omitempty" yaml:"id_token_claims,omitempty"`
}

func exchangeAndPrint(cmd *cobra.Command, client *authcode.Client, code string) error {
	token, err := client.GenerateToken(cmd.Context(), code)
	if err != nil {
		return err
	}
	info, err := client.UserInfo(cmd.Context())
	if err != nil {
		return err
	}

	result := loginResult{
		UserInfo:    info,
		Expiry:      token.Expiry,
		TokenClaims: unverifiedClaims(token.AccessToken),
		IDClaims:    unverifiedClaims(idToken(token)),
	}
	return printResult(cmd, result, func(w io.Writer) error {
		if err := renderUserInfo(w, info); err != nil {
			return err
		}
		if len(result.IDClaims) == 0 {
			return nil
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return renderClaims(w, result.IDClaims)
	})
}

func idToken(token *oauth2.Token) string {
	raw, _ := token.Extra("id_token").(string)
	return raw
}

// unverifiedClaims decodes the claims of a JWT without checking its
// signature. It returns nil when raw is not a JWT.
func unverifiedClaims(raw string) jwt.MapClaims {
	if raw == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		logger.Debugf("token is not a JWT: %v", err)
		return nil
	}
	return claims
}

func renderUserInfo(w io.Writer, info *gamma.UserInfo) error {
	rows := [][]string{
		{"sub", string(info.Subject)},
		{"cid", info.CID},
		{"name", info.Name},
		{"nickname", info.Nickname},
		{"picture", info.Picture},
	}
	if info.Email != "" {
		rows = append(rows, []string{"email", info.Email})
	}
	rows = append(rows, []string{"scope", gamma.JoinScopes(info.Scope)})
	return renderTable(w, []string{"Claim", "Value"}, rows)
}

func renderClaims(w io.Writer, claims jwt.MapClaims) error {
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, fmt.Sprint(claims[k])})
	}
	return renderTable(w, []string{"ID Token Claim", "Value"}, rows)
}
