// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package gamma

import (
	"fmt"
	"strings"
)

// Scope is an OAuth2 scope supported by Gamma.
type Scope string

const (
	// ScopeOpenID requests an OpenID Connect login.
	ScopeOpenID Scope = "openid"
	// ScopeProfile requests the profile claims.
	ScopeProfile Scope = "profile"
	// ScopeEmail requests the email claim.
	ScopeEmail Scope = "email"
)

// AllScopes lists every supported scope.
var AllScopes = []Scope{ScopeOpenID, ScopeProfile, ScopeEmail}

// Valid reports whether s is one of the supported scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeOpenID, ScopeProfile, ScopeEmail:
		return true
	default:
		return false
	}
}

// ParseScopes converts raw scope names into Scopes, rejecting unknown ones.
func ParseScopes(raw []string) ([]Scope, error) {
	scopes := make([]Scope, 0, len(raw))
	for _, r := range raw {
		s := Scope(strings.TrimSpace(r))
		if !s.Valid() {
			return nil, fmt.Errorf("unsupported scope %q (supported: %s)", r, JoinScopes(AllScopes))
		}
		scopes = append(scopes, s)
	}
	return scopes, nil
}

// ScopeStrings converts scopes to plain strings.
func ScopeStrings(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}

// JoinScopes joins scopes with a single space, the OAuth2 scope separator.
func JoinScopes(scopes []Scope) string {
	return strings.Join(ScopeStrings(scopes), " ")
}
