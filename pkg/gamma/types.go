// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package gamma

// UserID identifies a user. Identifiers are UUID-shaped strings issued by
// Gamma and are not parsed or validated when decoded.
type UserID string

// GroupID identifies a group.
type GroupID string

// SuperGroupID identifies a super group.
type SuperGroupID string

// PostID identifies a post.
type PostID string

// User is the identity record of a Gamma account.
type User struct {
	ID             UserID `json:"id" yaml:"id"`
	CID            string `json:"cid" yaml:"cid"`
	Nick           string `json:"nick" yaml:"nick"`
	FirstName      string `json:"firstName" yaml:"firstName"`
	LastName       string `json:"lastName" yaml:"lastName"`
	AcceptanceYear int    `json:"acceptanceYear" yaml:"acceptanceYear"`
}

// SuperGroup is the top level of the group hierarchy, e.g. a committee that
// has one group per year.
type SuperGroup struct {
	ID            SuperGroupID `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	PrettyName    string       `json:"prettyName" yaml:"prettyName"`
	Type          string       `json:"type" yaml:"type"`
	SvDescription string       `json:"svDescription" yaml:"svDescription"`
	EnDescription string       `json:"enDescription" yaml:"enDescription"`
}

// Group belongs to exactly one SuperGroup.
type Group struct {
	ID         GroupID    `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	PrettyName string     `json:"prettyName" yaml:"prettyName"`
	SuperGroup SuperGroup `json:"superGroup" yaml:"superGroup"`
}

// Versioned is embedded by records whose version is owned by Gamma.
type Versioned struct {
	Version int `json:"version" yaml:"version"`
}

// Post is a role a user can hold within a group.
type Post struct {
	ID     PostID `json:"id" yaml:"id"`
	SvName string `json:"svName" yaml:"svName"`
	EnName string `json:"enName" yaml:"enName"`

	Versioned `yaml:",inline"`
}

// PostInfo is a Post with the details shown in membership listings.
type PostInfo struct {
	Post `yaml:",inline"`

	EmailPrefix string `json:"emailPrefix" yaml:"emailPrefix"`
	Order       int    `json:"order" yaml:"order"`
}

// VersionedSuperGroup is a SuperGroup with its version.
type VersionedSuperGroup struct {
	SuperGroup `yaml:",inline"`
	Versioned  `yaml:",inline"`
}

// VersionedGroup is a Group with its version. Its super group is versioned too.
type VersionedGroup struct {
	ID         GroupID             `json:"id" yaml:"id"`
	Name       string              `json:"name" yaml:"name"`
	PrettyName string              `json:"prettyName" yaml:"prettyName"`
	SuperGroup VersionedSuperGroup `json:"superGroup" yaml:"superGroup"`

	Versioned `yaml:",inline"`
}

// GroupWithPost is a group joined with the post a user holds in it.
type GroupWithPost struct {
	Group `yaml:",inline"`

	Post Post `json:"post" yaml:"post"`
}

// GroupMembership is one entry of UserWithGroups.
type GroupMembership struct {
	Group VersionedGroup `json:"group" yaml:"group"`
	Post  PostInfo       `json:"post" yaml:"post"`
}

// UserWithGroups is the extended profile returned by the info API.
type UserWithGroups struct {
	User   User              `json:"user" yaml:"user"`
	Groups []GroupMembership `json:"groups" yaml:"groups"`
}

// ClientAuthority is an opaque permission label.
type ClientAuthority string

// UserInfo holds the claims returned by the OAuth2 userinfo endpoint.
// Picture is the avatar URL of the user (see UserAvatarURL), Email is only
// present when the email scope was granted, and the timestamps are seconds
// since the Unix epoch.
type UserInfo struct {
	Subject    UserID `json:"sub" yaml:"sub"`
	CID        string `json:"cid" yaml:"cid"`
	Name       string `json:"name" yaml:"name"`
	GivenName  string `json:"given_name" yaml:"given_name"`
	FamilyName string `json:"family_name" yaml:"family_name"`
	Nickname   string `json:"nickname" yaml:"nickname"`
	Picture    string `json:"picture" yaml:"picture"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`

	Scope     []Scope  `json:"scope" yaml:"scope"`
	Issuer    string   `json:"iss" yaml:"iss"`
	Audience  []string `json:"aud" yaml:"aud"`
	NotBefore int64    `json:"nbf" yaml:"nbf"`
	ExpiresAt int64    `json:"exp" yaml:"exp"`
	IssuedAt  int64    `json:"iat" yaml:"iat"`
	JWTID     string   `json:"jti" yaml:"jti"`
}
