// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config contains the definition of the gamma CLI configuration and
// the logic required to load, override and update it.
package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-core/env"

	"github.com/stacklok/gamma/pkg/gamma"
	"github.com/stacklok/gamma/pkg/networking"
)

// Environment variables that override values from the config file.
const (
	BaseURLEnvVar                = "GAMMA_BASE_URL"
	ClientAPIAuthorizationEnvVar = "GAMMA_CLIENT_API_AUTHORIZATION"
	InfoAPIAuthorizationEnvVar   = "GAMMA_INFO_API_AUTHORIZATION"
	ClientIDEnvVar               = "GAMMA_CLIENT_ID"
	ClientSecretEnvVar           = "GAMMA_CLIENT_SECRET"
	RedirectURIEnvVar            = "GAMMA_REDIRECT_URI"
)

// DefaultRedirectURI is the redirect URI used by `gamma oauth login` when none
// is configured.
const DefaultRedirectURI = "http://localhost:8080/callback"

// Config represents the configuration of the gamma CLI.
type Config struct {
	BaseURL           string        `json:"base_url" yaml:"base_url"`
	ClientAPI         APICredential `json:"client_api,omitzero" yaml:"client_api,omitempty"`
	InfoAPI           APICredential `json:"info_api,omitzero" yaml:"info_api,omitempty"`
	OAuth             OAuth         `json:"oauth,omitzero" yaml:"oauth,omitempty"`
	CACertificatePath string        `json:"ca_certificate_path,omitempty" yaml:"ca_certificate_path,omitempty"`
	HTTPTimeout       time.Duration `json:"http_timeout,omitempty" yaml:"http_timeout,omitempty"`
	InsecureAllowHTTP bool          `json:"insecure_allow_http,omitempty" yaml:"insecure_allow_http,omitempty"`
}

// APICredential is the value sent verbatim in the Authorization header of an API.
type APICredential struct {
	Authorization string `json:"authorization,omitempty" yaml:"authorization,omitempty"`
}

// OAuth contains the registration of the OAuth2 client.
type OAuth struct {
	ClientID     string   `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret string   `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	RedirectURI  string   `json:"redirect_uri,omitempty" yaml:"redirect_uri,omitempty"`
	Scopes       []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
}

// defaultPathGenerator generates the default config path using xdg
var defaultPathGenerator = func() (string, error) {
	return xdg.ConfigFile("gamma/config.yaml")
}

// getConfigPath is the current path generator, can be replaced in tests
var getConfigPath = defaultPathGenerator

// DefaultPath returns the path of the config file when none is given.
func DefaultPath() (string, error) {
	return getConfigPath()
}

// createNewConfigWithDefaults creates a new config with default values
func createNewConfigWithDefaults() Config {
	return Config{
		BaseURL: gamma.Root,
		OAuth: OAuth{
			RedirectURI: DefaultRedirectURI,
			Scopes:      gamma.ScopeStrings([]gamma.Scope{gamma.ScopeOpenID, gamma.ScopeProfile}),
		},
		HTTPTimeout: networking.HttpTimeout,
	}
}

// saveToPath serializes the config struct and writes it to a specific path.
func (c *Config) saveToPath(configPath string) error {
	configBytes, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing config file: %w", err)
	}

	// The file holds credentials.
	err = os.WriteFile(configPath, configBytes, 0600)
	if err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// WithEnv returns a copy of the config with the GAMMA_* environment variables
// applied on top. Unset or empty variables leave the file value in place.
func (c *Config) WithEnv(envReader env.Reader) *Config {
	out := *c
	out.OAuth.Scopes = append([]string(nil), c.OAuth.Scopes...)

	overrides := []struct {
		name   string
		target *string
	}{
		{BaseURLEnvVar, &out.BaseURL},
		{ClientAPIAuthorizationEnvVar, &out.ClientAPI.Authorization},
		{InfoAPIAuthorizationEnvVar, &out.InfoAPI.Authorization},
		{ClientIDEnvVar, &out.OAuth.ClientID},
		{ClientSecretEnvVar, &out.OAuth.ClientSecret},
		{RedirectURIEnvVar, &out.OAuth.RedirectURI},
	}
	for _, o := range overrides {
		if v := envReader.Getenv(o.name); v != "" {
			*o.target = v
		}
	}
	return &out
}

// Validate checks the values that do not depend on the operation being run.
// Missing credentials are reported by the operation that needs them.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		if err := networking.ValidateEndpointURLWithInsecure(c.BaseURL, c.InsecureAllowHTTP); err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
	}
	if c.OAuth.RedirectURI != "" && !networking.IsURL(c.OAuth.RedirectURI) {
		return fmt.Errorf("invalid oauth.redirect_uri: %s is not an absolute http(s) URL", c.OAuth.RedirectURI)
	}
	if _, err := gamma.ParseScopes(c.OAuth.Scopes); err != nil {
		return fmt.Errorf("invalid oauth.scopes: %w", err)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("invalid http_timeout: %s is negative", c.HTTPTimeout)
	}
	return nil
}

// Endpoints returns the endpoints of the configured Gamma instance.
func (c *Config) Endpoints() gamma.Endpoints {
	if c.BaseURL == "" {
		return gamma.DefaultEndpoints
	}
	return gamma.NewEndpoints(c.BaseURL)
}

// Scopes returns the configured OAuth2 scopes.
func (c *Config) Scopes() ([]gamma.Scope, error) {
	return gamma.ParseScopes(c.OAuth.Scopes)
}

// HTTPClient builds the HTTP client described by the config.
func (c *Config) HTTPClient() (*http.Client, error) {
	builder := networking.NewHttpClientBuilder().
		WithTimeout(c.HTTPTimeout).
		WithInsecureAllowHTTP(c.InsecureAllowHTTP)
	if c.CACertificatePath != "" {
		builder = builder.WithCABundle(c.CACertificatePath)
	}
	client, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP client: %w", err)
	}
	return client, nil
}

// Redacted returns a copy of the config that is safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	out.OAuth.Scopes = append([]string(nil), c.OAuth.Scopes...)
	out.ClientAPI.Authorization = redact(c.ClientAPI.Authorization)
	out.InfoAPI.Authorization = redact(c.InfoAPI.Authorization)
	out.OAuth.ClientSecret = redact(c.OAuth.ClientSecret)
	return &out
}

func redact(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "********"
	default:
		return "********" + secret[len(secret)-4:]
	}
}
