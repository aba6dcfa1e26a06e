// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package gamma

import "strings"

// Root is the authority of the production Gamma instance.
const Root = "https://auth.chalmers.it"

// Paths relative to the root.
const (
	AuthorizePath = "/oauth2/authorize"
	TokenPath     = "/oauth2/token"
	UserInfoPath  = "/oauth2/userinfo"

	ClientAPIPath               = "/api/client/v1"
	ClientAPIUsersPath          = ClientAPIPath + "/users"
	ClientAPIGroupsPath         = ClientAPIPath + "/groups"
	ClientAPIGroupsForPath      = ClientAPIGroupsPath + "/for"
	ClientAPISuperGroupsPath    = ClientAPIPath + "/superGroups"
	ClientAPIAuthoritiesPath    = ClientAPIPath + "/authorities"
	ClientAPIAuthoritiesForPath = ClientAPIAuthoritiesPath + "/for"

	InfoAPIPath      = "/api/info/v1"
	InfoAPIUsersPath = InfoAPIPath + "/users"

	ImagesPath                 = "/images"
	ImagesUserAvatarPath       = ImagesPath + "/user/avatar"
	ImagesGroupAvatarPath      = ImagesPath + "/group/avatar"
	ImagesGroupBannerPath      = ImagesPath + "/group/banner"
	ImagesSuperGroupAvatarPath = ImagesPath + "/super-group/avatar"
	ImagesSuperGroupBannerPath = ImagesPath + "/super-group/banner"
)

// Endpoints builds fully-qualified endpoint URLs against a root.
// The zero value builds root-relative URLs.
type Endpoints struct {
	Root string
}

// DefaultEndpoints targets the production Gamma instance.
var DefaultEndpoints = Endpoints{Root: Root}

// NewEndpoints returns Endpoints for root with a single trailing slash removed.
func NewEndpoints(root string) Endpoints {
	return Endpoints{Root: strings.TrimSuffix(root, "/")}
}

func (e Endpoints) join(path string) string {
	return e.Root + path
}

func (e Endpoints) joinID(path, id string) string {
	return e.Root + path + "/" + id
}

// Authorize is the OAuth2 authorization endpoint.
func (e Endpoints) Authorize() string { return e.join(AuthorizePath) }

// Token is the OAuth2 token endpoint.
func (e Endpoints) Token() string { return e.join(TokenPath) }

// UserInfo is the OAuth2 userinfo endpoint.
func (e Endpoints) UserInfo() string { return e.join(UserInfoPath) }

// ClientAPIUsers lists all users.
func (e Endpoints) ClientAPIUsers() string { return e.join(ClientAPIUsersPath) }

// ClientAPIUser fetches a single user.
func (e Endpoints) ClientAPIUser(id UserID) string {
	return e.joinID(ClientAPIUsersPath, string(id))
}

// ClientAPIGroups lists all groups.
func (e Endpoints) ClientAPIGroups() string { return e.join(ClientAPIGroupsPath) }

// ClientAPIGroupsFor lists the groups a user is a member of.
func (e Endpoints) ClientAPIGroupsFor(id UserID) string {
	return e.joinID(ClientAPIGroupsForPath, string(id))
}

// ClientAPISuperGroups lists all super groups.
func (e Endpoints) ClientAPISuperGroups() string { return e.join(ClientAPISuperGroupsPath) }

// ClientAPIAuthorities lists every authority known to the client.
func (e Endpoints) ClientAPIAuthorities() string { return e.join(ClientAPIAuthoritiesPath) }

// ClientAPIAuthoritiesFor lists the authorities held by a user.
func (e Endpoints) ClientAPIAuthoritiesFor(id UserID) string {
	return e.joinID(ClientAPIAuthoritiesForPath, string(id))
}

// InfoAPIUser fetches a user with their group memberships.
func (e Endpoints) InfoAPIUser(id UserID) string {
	return e.joinID(InfoAPIUsersPath, string(id))
}

// UserAvatar is the avatar image of a user.
func (e Endpoints) UserAvatar(id UserID) string {
	return e.joinID(ImagesUserAvatarPath, string(id))
}

// GroupAvatar is the avatar image of a group.
func (e Endpoints) GroupAvatar(id GroupID) string {
	return e.joinID(ImagesGroupAvatarPath, string(id))
}

// GroupBanner is the banner image of a group.
func (e Endpoints) GroupBanner(id GroupID) string {
	return e.joinID(ImagesGroupBannerPath, string(id))
}

// SuperGroupAvatar is the avatar image of a super group.
func (e Endpoints) SuperGroupAvatar(id SuperGroupID) string {
	return e.joinID(ImagesSuperGroupAvatarPath, string(id))
}

// SuperGroupBanner is the banner image of a super group.
func (e Endpoints) SuperGroupBanner(id SuperGroupID) string {
	return e.joinID(ImagesSuperGroupBannerPath, string(id))
}

// ClientAPIUser returns DefaultEndpoints.ClientAPIUser(id).
func ClientAPIUser(id UserID) string { return DefaultEndpoints.ClientAPIUser(id) }

// ClientAPIGroupsFor returns DefaultEndpoints.ClientAPIGroupsFor(id).
func ClientAPIGroupsFor(id UserID) string { return DefaultEndpoints.ClientAPIGroupsFor(id) }

// ClientAPIAuthoritiesFor returns DefaultEndpoints.ClientAPIAuthoritiesFor(id).
func ClientAPIAuthoritiesFor(id UserID) string {
	return DefaultEndpoints.ClientAPIAuthoritiesFor(id)
}

// InfoAPIUser returns DefaultEndpoints.InfoAPIUser(id).
func InfoAPIUser(id UserID) string { return DefaultEndpoints.InfoAPIUser(id) }

// UserAvatarURL returns DefaultEndpoints.UserAvatar(id).
func UserAvatarURL(id UserID) string { return DefaultEndpoints.UserAvatar(id) }

// GroupAvatarURL returns DefaultEndpoints.GroupAvatar(id).
func GroupAvatarURL(id GroupID) string { return DefaultEndpoints.GroupAvatar(id) }

// GroupBannerURL returns DefaultEndpoints.GroupBanner(id).
func GroupBannerURL(id GroupID) string { return DefaultEndpoints.GroupBanner(id) }

// SuperGroupAvatarURL returns DefaultEndpoints.SuperGroupAvatar(id).
func SuperGroupAvatarURL(id SuperGroupID) string { return DefaultEndpoints.SuperGroupAvatar(id) }

// SuperGroupBannerURL returns DefaultEndpoints.SuperGroupBanner(id).
func SuperGroupBannerURL(id SuperGroupID) string { return DefaultEndpoints.SuperGroupBanner(id) }
