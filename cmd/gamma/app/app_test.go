// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-core/env/mocks"

	"github.com/stacklok/gamma/pkg/config"
	"github.com/stacklok/gamma/pkg/gamma"
)

const (
	adaID   = "11111111-1111-1111-1111-111111111111"
	graceID = "55555555-5555-5555-5555-555555555555"

	testClientAPIKey = "client-api-pre-shared-key"
	testInfoAPIKey   = "info-api-pre-shared-key"
)

var (
	ada = gamma.User{
		ID: adaID, CID: "adalov", Nick: "Portals",
		FirstName: "Ada", LastName: "Lovelace", AcceptanceYear: 2019,
	}
	grace = gamma.User{
		ID: graceID, CID: "gracho", Nick: "Cobol",
		FirstName: "Grace", LastName: "Hopper", AcceptanceYear: 2020,
	}
	digit = gamma.SuperGroup{ID: "33333333-3333-3333-3333-333333333333", Name: "digit", PrettyName: "digIT", Type: "committee"}
)

// fakeGamma serves the Gamma endpoints the CLI talks to.
type fakeGamma struct {
	*httptest.Server
	accessToken string
	requests    atomic.Int32
}

func newFakeGamma(t *testing.T) *fakeGamma {
	t.Helper()

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": adaID,
		"iss": "gamma",
	}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	f := &fakeGamma{accessToken: accessToken}
	routes := map[string]struct {
		authorization string
		body          any
	}{
		gamma.ClientAPIUsersPath:                {"pre-shared " + testClientAPIKey, []gamma.User{ada, grace}},
		gamma.ClientAPIUsersPath + "/" + adaID:   {"pre-shared " + testClientAPIKey, ada},
		gamma.ClientAPIUsersPath + "/" + graceID: {"pre-shared " + testClientAPIKey, grace},
		gamma.ClientAPIGroupsPath: {"pre-shared " + testClientAPIKey, []gamma.Group{
			{ID: "22222222-2222-2222-2222-222222222222", Name: "digit23", PrettyName: "digIT 23/24", SuperGroup: digit},
		}},
		gamma.ClientAPISuperGroupsPath:                      {"pre-shared " + testClientAPIKey, []gamma.SuperGroup{digit}},
		gamma.ClientAPIAuthoritiesPath:                      {"pre-shared " + testClientAPIKey, []gamma.ClientAuthority{"admin", "member"}},
		gamma.ClientAPIAuthoritiesForPath + "/" + graceID:   {"pre-shared " + testClientAPIKey, []gamma.ClientAuthority{}},
		gamma.InfoAPIUsersPath + "/" + adaID: {"pre-shared " + testInfoAPIKey, gamma.UserWithGroups{
			User: ada,
			Groups: []gamma.GroupMembership{{
				Group: gamma.VersionedGroup{PrettyName: "digIT 23/24", SuperGroup: gamma.VersionedSuperGroup{SuperGroup: digit}},
				Post:  gamma.PostInfo{Post: gamma.Post{EnName: "Chairman"}, EmailPrefix: "ordf", Order: 1},
			}},
		}},
		gamma.UserInfoPath: {"Bearer " + accessToken, gamma.UserInfo{
			Subject: adaID, CID: "adalov", Name: "Ada Lovelace", Nickname: "Portals",
			Scope: []gamma.Scope{gamma.ScopeOpenID, gamma.ScopeProfile},
		}},
	}

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)

		if r.URL.Path == gamma.TokenPath {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "my-client" || pass != "my-secret" || r.PostFormValue("code") != "good-code" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": accessToken,
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
			return
		}

		route, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != route.authorization {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(route.body)
	}))
	t.Cleanup(f.Close)
	return f
}

// setupCLI writes cfg to a temp config file and stubs the environment.
// Tests that use it must not run in parallel since they replace package state.
func setupCLI(t *testing.T, cfg config.Config) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, data, 0600))

	ctrl := gomock.NewController(t)
	mockEnv := mocks.NewMockReader(ctrl)
	mockEnv.EXPECT().Getenv(gomock.Any()).Return("").AnyTimes()

	previous := envReader
	envReader = mockEnv
	t.Cleanup(func() { envReader = previous })

	return configPath
}

func fullConfig(baseURL string) config.Config {
	return config.Config{
		BaseURL:   baseURL,
		ClientAPI: config.APICredential{Authorization: "pre-shared " + testClientAPIKey},
		InfoAPI:   config.APICredential{Authorization: "pre-shared " + testInfoAPIKey},
		OAuth: config.OAuth{
			ClientID:     "my-client",
			ClientSecret: "my-secret",
			RedirectURI:  "http://localhost:8080/callback",
			Scopes:       []string{"openid", "profile"},
		},
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := runCLIWithStderr(t, args...)
	return stdout, err
}

func runCLIWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestUsersList(t *testing.T) { //nolint:paralleltest // replaces envReader
	fake := newFakeGamma(t)
	configPath := setupCLI(t, fullConfig(fake.URL))

	out, err := runCLI(t, "--config", configPath, "users", "list", "-o", "json")
	require.NoError(t, err)

	users := gjson.Parse(out)
	require.True(t, users.IsArray())
	assert.Len(t, users.Array(), 2)
	assert.Equal(t, "Portals", users.Get("0.nick").String())
	assert.Equal(t, "Hopper", users.Get("1.lastName").String())
	assert.Equal(t, int64(2019), users.Get("0.acceptanceYear").Int())

	out, err = runCLI(t, "--config", configPath, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Cobol")
}

func TestUsersGet(t *testing.T) { //nolint:paralleltest // replaces envReader
	fake := newFakeGamma(t)
	configPath := setupCLI(t, fullConfig(fake.URL))

	t.Run("single user prints an object", func(t *testing.T) {
		out, err := runCLI(t, "--config", configPath, "users", "get", adaID, "-o", "json")
		require.NoError(t, err)
		assert.Equal(t, "adalov", gjson.Get(out, "cid").String())
	})

	t.Run("several users keep argument order", func(t *testing.T) {
		out, err := runCLI(t, "--config", configPath, "users", "get", graceID, adaID, "-o", "json")
		require.NoError(t, err)
		assert.Equal(t, []string{graceID, adaID}, stringsOf(gjson.Get(out, "#.id")))
	})

	t.Run("yaml output", func(t *testing.T) {
		out, err := runCLI(t, "--config", configPath, "users", "get", adaID, "-o", "yaml")
		require.NoError(t, err)

		var user gamma.User
		require.NoError(t, yaml.Unmarshal([]byte(out), &user))
		assert.Equal(t, ada, user)
	})

	t.Run("invalid ID is rejected before any request", func(t *testing.T) {
		before := fake.requests.Load()
		_, err := runCLI(t, "--config", configPath, "users", "get", "not-a-uuid")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid user ID "not-a-uuid"`)
		assert.Equal(t, before, fake.requests.Load())
	})

	t.Run("unknown user reports the status", func(t *testing.T) {
		_, err := runCLI(t, "--config", configPath, "users", "get", "99999999-9999-9999-9999-999999999999")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "received code 404 during GET")
	})
}

func TestGroupsAndAuthorities(t *testing.T) { //nolint:paralleltest // replaces envReader
	fake := newFakeGamma(t)
	configPath := setupCLI(t, fullConfig(fake.URL))

	out, err := runCLI(t, "--config", configPath, "groups", "list", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "digIT", gjson.Get(out, "0.superGroup.prettyName").String())

	out, err = runCLI(t, "--config", configPath, "super-groups", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "committee")

	out, err = runCLI(t, "--config", configPath, "authorities", "list", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "member"}, stringsOf(gjson.Parse(out)))

	out, err = runCLI(t, "--config", configPath, "authorities", "for", graceID)
	require.NoError(t, err)
	assert.Equal(t, "User holds no authorities\n", out)

	_, err = runCLI(t, "--config", configPath, "groups", "for", graceID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "received code 404 during GET to "+fake.URL+gamma.ClientAPIGroupsForPath+"/"+graceID)
}

func TestInfoUser(t *testing.T) { //nolint:paralleltest // replaces envReader
	fake := newFakeGamma(t)
	configPath := setupCLI(t, fullConfig(fake.URL))

	out, err := runCLI(t, "--config", configPath, "info", "user", adaID, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "Portals", gjson.Get(out, "user.nick").String())
	assert.Equal(t, "ordf", gjson.Get(out, "groups.0.post.emailPrefix").String())

	out, err = runCLI(t, "--config", configPath, "info", "user", adaID)
	require.NoError(t, err)
	assert.Contains(t, out, "Chairman")
}

func TestMissingCredentials(t *testing.T) { //nolint:paralleltest // replaces envReader
	fake := newFakeGamma(t)
	configPath := setupCLI(t, config.Config{BaseURL: fake.URL})

	_, err := runCLI(t, "--config", configPath, "users", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ClientAPIAuthorizationEnvVar)

	_, err = runCLI(t, "--config", configPath, "info", "user", adaID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.InfoAPIAuthorizationEnvVar)

	_, err = runCLI(t, "--config", configPath, "oauth", "authorize-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client-id")

	assert.Zero(t, fake.requests.Load())
}

func TestEnvironmentOverridesConfig(t *testing.T) { //nolint:paralleltest // replaces envReader
	fake := newFakeGamma(t)
	configPath := setupCLI(t, config.Config{BaseURL: "https://unused.example.com"})

	ctrl := gomock.NewController(t)
	mockEnv := mocks.NewMockReader(ctrl)
	mockEnv.EXPECT().Getenv(config.BaseURLEnvVar).Return(fake.URL).AnyTimes()
	mockEnv.EXPECT().Getenv(config.ClientAPIAuthorizationEnvVar).Return("pre-shared " + testClientAPIKey).AnyTimes()
	mockEnv.EXPECT().Getenv(gomock.Any()).Return("").AnyTimes()
	envReader = mockEnv

	out, err := runCLI(t, "--config", configPath, "authorities", "list", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(out, "#").Int())
}

func TestOAuth(t *testing.T) { //nolint:paralleltest // replaces envReader
	fake := newFakeGamma(t)
	configPath := setupCLI(t, fullConfig(fake.URL))

	t.Run("authorize-url", func(t *testing.T) {
		out, err := runCLI(t, "--config", configPath, "oauth", "authorize-url")
		require.NoError(t, err)
		assert.Contains(t, out, fake.URL+gamma.AuthorizePath+"?")
		assert.Contains(t, out, "client_id=my-client")
		assert.Contains(t, out, "response_type=code")
		assert.Contains(t, out, "scope=openid+profile")
	})

	t.Run("exchange prints user info and token claims", func(t *testing.T) {
		out, err := runCLI(t, "--config", configPath, "oauth", "exchange", "good-code", "-o", "json")
		require.NoError(t, err)
		assert.Equal(t, adaID, gjson.Get(out, "userinfo.sub").String())
		assert.Equal(t, "Ada Lovelace", gjson.Get(out, "userinfo.name").String())
		assert.Equal(t, adaID, gjson.Get(out, "token_claims.sub").String())
		assert.False(t, gjson.Get(out, "id_token_claims").Exists())
	})

	t.Run("exchange table output", func(t *testing.T) {
		out, err := runCLI(t, "--config", configPath, "oauth", "exchange", "good-code")
		require.NoError(t, err)
		assert.Contains(t, out, "Ada Lovelace")
		assert.Contains(t, out, "openid profile")
	})

	t.Run("rejected code", func(t *testing.T) {
		_, err := runCLI(t, "--config", configPath, "oauth", "exchange", "bad-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "received code 400 during POST")
		assert.Contains(t, err.Error(), "invalid_grant")
	})
}

// stubBrowser replaces openBrowser for the duration of the test.
func stubBrowser(t *testing.T, open func(string) error) {
	t.Helper()
	previous := openBrowser
	openBrowser = open
	t.Cleanup(func() { openBrowser = previous })
}

// loopbackRedirectURI returns a callback URI on a port that was free a moment ago.
func loopbackRedirectURI(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return fmt.Sprintf("http://127.0.0.1:%d/callback", port)
}

func loginConfig(t *testing.T, fake *fakeGamma) (configPath, redirectURI string) {
	t.Helper()
	redirectURI = loopbackRedirectURI(t)
	cfg := fullConfig(fake.URL)
	cfg.OAuth.RedirectURI = redirectURI
	return setupCLI(t, cfg), redirectURI
}

func TestOAuthLogin(t *testing.T) { //nolint:paralleltest // replaces envReader and openBrowser
	fake := newFakeGamma(t)

	t.Run("browser completes the redirect", func(t *testing.T) {
		configPath, redirectURI := loginConfig(t, fake)

		var opened string
		stubBrowser(t, func(authURL string) error {
			opened = authURL
			resp, err := http.Get(redirectURI + "?code=good-code") //nolint:gosec // loopback test URL
			if err != nil {
				return err
			}
			return resp.Body.Close()
		})

		out, err := runCLI(t, "--config", configPath, "oauth", "login", "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, opened, fake.URL+gamma.AuthorizePath+"?")
		assert.Contains(t, opened, "redirect_uri="+url.QueryEscape(redirectURI))
		assert.Equal(t, adaID, gjson.Get(out, "userinfo.sub").String())
		assert.Equal(t, adaID, gjson.Get(out, "token_claims.sub").String())
	})

	t.Run("denied consent", func(t *testing.T) {
		configPath, redirectURI := loginConfig(t, fake)

		stubBrowser(t, func(string) error {
			resp, err := http.Get(redirectURI + "?error=access_denied") //nolint:gosec // loopback test URL
			if err != nil {
				return err
			}
			return resp.Body.Close()
		})

		_, err := runCLI(t, "--config", configPath, "oauth", "login")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access_denied")
	})

	t.Run("browser failure prints the URL and times out", func(t *testing.T) {
		configPath, _ := loginConfig(t, fake)
		stubBrowser(t, func(string) error { return errors.New("no display") })

		_, stderr, err := runCLIWithStderr(t, "--config", configPath, "oauth", "login", "--timeout", "200ms")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, stderr, "Open this URL in your browser")
		assert.Contains(t, stderr, fake.URL+gamma.AuthorizePath+"?")
	})

	t.Run("no browser flag", func(t *testing.T) {
		configPath, _ := loginConfig(t, fake)
		stubBrowser(t, func(string) error {
			t.Error("browser opened despite --no-browser")
			return nil
		})

		_, stderr, err := runCLIWithStderr(t, "--config", configPath, "oauth", "login", "--no-browser", "--timeout", "100ms")
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, stderr, "client_id=my-client")
	})
}

func TestParseUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		arg     string
		wantErr bool
	}{
		{"lowercase", adaID, false},
		{"uppercase is kept", "AAAAAAAA-1111-1111-1111-111111111111", false},
		{"urn form is kept", "urn:uuid:" + adaID, false},
		{"braced form is kept", "{" + adaID + "}", false},
		{"not a uuid", "ada", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := parseUserID(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, gamma.UserID(tt.arg), id)
		})
	}
}

func TestImageURL(t *testing.T) { //nolint:paralleltest // replaces envReader
	configPath := setupCLI(t, config.Config{BaseURL: "https://gamma.example.com/"})

	out, err := runCLI(t, "--config", configPath, "image-url", "super-group", "banner", string(digit.ID))
	require.NoError(t, err)
	assert.Equal(t, "https://gamma.example.com/images/super-group/banner/"+string(digit.ID)+"\n", out)

	out, err = runCLI(t, "--config", configPath, "--base-url", "https://other.example.com", "image-url", "user", "avatar", adaID)
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/images/user/avatar/"+adaID+"\n", out)

	const upperID = "AAAAAAAA-1111-1111-1111-111111111111"
	out, err = runCLI(t, "--config", configPath, "image-url", "group", "avatar", upperID)
	require.NoError(t, err)
	assert.Equal(t, "https://gamma.example.com/images/group/avatar/"+upperID+"\n", out)

	_, err = runCLI(t, "--config", configPath, "image-url", "user", "banner", adaID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported image "user banner"`)
}

func TestConfigCommands(t *testing.T) { //nolint:paralleltest // replaces envReader
	configPath := setupCLI(t, config.Config{})

	out, err := runCLI(t, "--config", configPath, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, configPath+"\n", out)

	out, err = runCLI(t, "--config", configPath, "config", "path", "-o", "json")
	require.NoError(t, err)
	assert.True(t, gjson.Get(out, "exists").Bool())

	missing := filepath.Join(t.TempDir(), "nested", "config.yaml")
	out, err = runCLI(t, "--config", missing, "config", "path", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, missing, gjson.Get(out, "path").String())
	assert.False(t, gjson.Get(out, "exists").Bool())

	out, stderr, err := runCLIWithStderr(t, "--config", missing, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, missing+"\n", out)
	assert.Contains(t, stderr, "does not exist yet")
	assert.NoFileExists(t, missing)

	_, err = runCLI(t, "--config", configPath, "config", "set", "client-api-authorization", "pre-shared super-secret-value")
	require.NoError(t, err)
	_, err = runCLI(t, "--config", configPath, "config", "set", "client-id", "my-client")
	require.NoError(t, err)

	out, err = runCLI(t, "--config", configPath, "config", "get", "client-id")
	require.NoError(t, err)
	assert.Equal(t, "my-client\n", out)

	out, err = runCLI(t, "--config", configPath, "config", "get", "client-api-authorization")
	require.NoError(t, err)
	assert.Equal(t, "********alue\n", out)

	out, err = runCLI(t, "--config", configPath, "config", "show", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "********alue", gjson.Get(out, "client_api.authorization").String())
	assert.NotContains(t, out, "super-secret")

	// The file keeps the real value.
	raw, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "pre-shared super-secret-value")

	_, err = runCLI(t, "--config", configPath, "config", "unset", "client-id")
	require.NoError(t, err)
	out, err = runCLI(t, "--config", configPath, "config", "get", "client-id")
	require.NoError(t, err)
	assert.Equal(t, "\n", out)

	_, err = runCLI(t, "--config", configPath, "config", "set", "base-url", "ftp://gamma.example.com")
	require.Error(t, err)

	_, err = runCLI(t, "--config", configPath, "config", "get", "no-such-key")
	require.ErrorIs(t, err, config.ErrUnknownField)

	out, err = runCLI(t, "--config", configPath, "config", "list-fields")
	require.NoError(t, err)
	assert.Contains(t, out, "redirect-uri\n")
}

func TestInvalidOutputFormat(t *testing.T) { //nolint:paralleltest // replaces envReader
	configPath := setupCLI(t, config.Config{})

	_, err := runCLI(t, "--config", configPath, "config", "path", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid output format "xml"`)
}

func stringsOf(result gjson.Result) []string {
	var out []string
	for _, r := range result.Array() {
		out = append(out, r.String())
	}
	return out
}
