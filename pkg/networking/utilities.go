// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// URL schemes
const (
	HttpScheme  = "http"
	HttpsScheme = "https"
)

// IsURL reports whether input is an absolute http(s) URL with a host.
func IsURL(input string) bool {
	parsed, err := url.Parse(input)
	if err != nil {
		return false
	}
	if parsed.Scheme != HttpScheme && parsed.Scheme != HttpsScheme {
		return false
	}
	return parsed.Host != ""
}

// IsLocalhost reports whether host (optionally with a port) is a loopback name or address.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ValidateEndpointURL requires an absolute HTTPS URL, allowing HTTP for localhost.
func ValidateEndpointURL(endpoint string) error {
	return ValidateEndpointURLWithInsecure(endpoint, false)
}

// ValidateEndpointURLWithInsecure is ValidateEndpointURL that also allows HTTP
// to any host when insecureAllowHTTP is set.
func ValidateEndpointURLWithInsecure(endpoint string, insecureAllowHTTP bool) error {
	if !IsURL(endpoint) {
		return fmt.Errorf("the supplied URL %s is malformed", endpoint)
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("the supplied URL %s is malformed", endpoint)
	}
	if parsed.Scheme == HttpsScheme || insecureAllowHTTP || IsLocalhost(parsed.Host) {
		return nil
	}
	return fmt.Errorf("the supplied URL %s is not HTTPS scheme", endpoint)
}
