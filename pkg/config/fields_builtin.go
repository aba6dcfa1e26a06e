// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stacklok/gamma/pkg/gamma"
	"github.com/stacklok/gamma/pkg/networking"
)

// init registers all built-in config fields
func init() {
	registerStringField("base-url", false, validateBaseURL,
		func(cfg *Config) *string { return &cfg.BaseURL })
	registerStringField("client-api-authorization", true, nil,
		func(cfg *Config) *string { return &cfg.ClientAPI.Authorization })
	registerStringField("info-api-authorization", true, nil,
		func(cfg *Config) *string { return &cfg.InfoAPI.Authorization })
	registerStringField("client-id", false, nil,
		func(cfg *Config) *string { return &cfg.OAuth.ClientID })
	registerStringField("client-secret", true, nil,
		func(cfg *Config) *string { return &cfg.OAuth.ClientSecret })
	registerStringField("redirect-uri", false, validateRedirectURI,
		func(cfg *Config) *string { return &cfg.OAuth.RedirectURI })
	registerStringField("ca-cert", false, validateCACertificate,
		func(cfg *Config) *string { return &cfg.CACertificatePath })
	registerScopesField()
	registerHTTPTimeoutField()
	registerInsecureAllowHTTPField()
}

// registerStringField registers a field backed by a single string.
func registerStringField(name string, secret bool, validator func(string) error, field func(*Config) *string) {
	RegisterConfigField(ConfigFieldSpec{
		Name:      name,
		Secret:    secret,
		Validator: validator,
		Setter:    func(cfg *Config, value string) { *field(cfg) = value },
		Getter:    func(cfg *Config) string { return *field(cfg) },
		Unsetter:  func(cfg *Config) { *field(cfg) = "" },
	})
}

// registerScopesField registers the OAuth2 scopes as a comma or space
// separated list.
func registerScopesField() {
	RegisterConfigField(ConfigFieldSpec{
		Name: "scopes",
		Validator: func(value string) error {
			_, err := gamma.ParseScopes(splitList(value))
			return err
		},
		Setter: func(cfg *Config, value string) {
			cfg.OAuth.Scopes = splitList(value)
		},
		Getter: func(cfg *Config) string {
			return strings.Join(cfg.OAuth.Scopes, " ")
		},
		Unsetter: func(cfg *Config) {
			cfg.OAuth.Scopes = nil
		},
	})
}

func registerHTTPTimeoutField() {
	RegisterConfigField(ConfigFieldSpec{
		Name: "http-timeout",
		Validator: func(value string) error {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			if d < 0 {
				return fmt.Errorf("duration %s is negative", d)
			}
			return nil
		},
		Setter: func(cfg *Config, value string) {
			// Validated above.
			cfg.HTTPTimeout, _ = time.ParseDuration(value)
		},
		Getter: func(cfg *Config) string {
			if cfg.HTTPTimeout == 0 {
				return ""
			}
			return cfg.HTTPTimeout.String()
		},
		Unsetter: func(cfg *Config) {
			cfg.HTTPTimeout = 0
		},
	})
}

// registerInsecureAllowHTTPField registers the switch that permits plain
// HTTP to hosts other than localhost.
func registerInsecureAllowHTTPField() {
	RegisterConfigField(ConfigFieldSpec{
		Name: "insecure-allow-http",
		Validator: func(value string) error {
			_, err := strconv.ParseBool(value)
			return err
		},
		Setter: func(cfg *Config, value string) {
			cfg.InsecureAllowHTTP, _ = strconv.ParseBool(value)
		},
		Getter: func(cfg *Config) string {
			if !cfg.InsecureAllowHTTP {
				return ""
			}
			return strconv.FormatBool(cfg.InsecureAllowHTTP)
		},
		Unsetter: func(cfg *Config) {
			cfg.InsecureAllowHTTP = false
		},
	})
}

func validateBaseURL(value string) error {
	return networking.ValidateEndpointURL(strings.TrimSuffix(value, "/"))
}

func validateRedirectURI(value string) error {
	_, err := validateURLScheme(value, true)
	return err
}

func splitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
