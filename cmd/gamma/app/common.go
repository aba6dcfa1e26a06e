// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-core/env"

	"github.com/stacklok/gamma/pkg/config"
	"github.com/stacklok/gamma/pkg/gamma"
	"github.com/stacklok/gamma/pkg/gamma/clientapi"
	"github.com/stacklok/gamma/pkg/gamma/infoapi"
	"github.com/stacklok/gamma/pkg/logger"
)

// Persistent flag names
const (
	flagConfig  = "config"
	flagBaseURL = "base-url"
	flagOutput  = "output"
)

// envReader is the environment used for config overrides. Tests replace it.
var envReader env.Reader = &env.OSReader{}

// GetStringFlagOrEmpty tries to get the string value of the given flag.
// If the flag doesn't exist or there's an error, it returns an empty string.
func GetStringFlagOrEmpty(cmd *cobra.Command, flagName string) string {
	value, err := cmd.Flags().GetString(flagName)
	if err != nil {
		return ""
	}
	return value
}

// configStore returns the store selected by the --config flag.
func configStore(cmd *cobra.Command) config.Store {
	return config.NewLocalStore(GetStringFlagOrEmpty(cmd, flagConfig))
}

// loadConfig loads the config file and applies environment and flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := configStore(cmd).Load(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg = cfg.WithEnv(envReader)
	if baseURL := GetStringFlagOrEmpty(cmd, flagBaseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debugw("configuration loaded", "base_url", cfg.Endpoints().Root)
	return cfg, nil
}

// session bundles what the API commands need from the configuration.
type session struct {
	cfg        *config.Config
	httpClient *http.Client
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	httpClient, err := cfg.HTTPClient()
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, httpClient: httpClient}, nil
}

func (s *session) clientAPI() (*clientapi.Client, error) {
	if s.cfg.ClientAPI.Authorization == "" {
		return nil, errors.New("no client API credential configured: run " +
			"`gamma config set client-api-authorization <key>` or set " + config.ClientAPIAuthorizationEnvVar)
	}
	return clientapi.NewClient(s.cfg.ClientAPI.Authorization,
		clientapi.WithHTTPClient(s.httpClient),
		clientapi.WithEndpoints(s.cfg.Endpoints()),
	), nil
}

func (s *session) infoAPI() (*infoapi.Client, error) {
	if s.cfg.InfoAPI.Authorization == "" {
		return nil, errors.New("no info API credential configured: run " +
			"`gamma config set info-api-authorization <key>` or set " + config.InfoAPIAuthorizationEnvVar)
	}
	return infoapi.NewClient(s.cfg.InfoAPI.Authorization,
		infoapi.WithHTTPClient(s.httpClient),
		infoapi.WithEndpoints(s.cfg.Endpoints()),
	), nil
}

// parseUserID checks that arg is a UUID, the shape of every Gamma identifier.
// The ID is passed on as typed.
func parseUserID(arg string) (gamma.UserID, error) {
	if _, err := uuid.Parse(arg); err != nil {
		return "", fmt.Errorf("invalid user ID %q: %w", arg, err)
	}
	return gamma.UserID(arg), nil
}
