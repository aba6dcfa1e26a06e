// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"path/filepath"

	"github.com/stacklok/gamma/pkg/networking"
)

// Error message templates for consistent error formatting
const (
	errFileNotFound     = "file not found or not accessible: %w"
	errFileRead         = "failed to read file: %w"
	errInvalidURL       = "invalid URL format: %w"
	errInvalidURLScheme = "URL must start with %s://"
)

// validateFilePath validates that a file path exists and is accessible.
// Returns the cleaned path.
func validateFilePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)

	if _, err := os.Stat(cleanPath); err != nil {
		return "", fmt.Errorf(errFileNotFound, err)
	}

	return cleanPath, nil
}

// readFile reads the contents of a file with consistent error messaging.
func readFile(path string) ([]byte, error) {
	// #nosec G304: File path is user-provided but validated by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(errFileRead, err)
	}
	return data, nil
}

// validateURLScheme validates that a URL is absolute with an http(s) scheme.
// If allowInsecure is false, only https is allowed.
func validateURLScheme(rawURL string, allowInsecure bool) (*neturl.URL, error) {
	parsedURL, err := neturl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf(errInvalidURL, err)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %s has no host", rawURL)
	}

	if allowInsecure {
		if parsedURL.Scheme != networking.HttpScheme && parsedURL.Scheme != networking.HttpsScheme {
			return nil, errors.New("URL must start with http:// or https://")
		}
	} else if parsedURL.Scheme != networking.HttpsScheme {
		return nil, fmt.Errorf(errInvalidURLScheme, networking.HttpsScheme)
	}

	return parsedURL, nil
}

// validateCACertificate checks that path holds at least one PEM encoded CA
// certificate.
func validateCACertificate(path string) error {
	cleanPath, err := validateFilePath(path)
	if err != nil {
		return fmt.Errorf("CA certificate %w", err)
	}
	data, err := readFile(cleanPath)
	if err != nil {
		return fmt.Errorf("CA certificate %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return errors.New("CA certificate is not a PEM encoded certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return fmt.Errorf("failed to parse CA certificate: %w", err)
	}
	if !cert.IsCA {
		return errors.New("certificate is not a CA certificate")
	}
	return nil
}
