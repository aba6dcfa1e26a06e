// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHttpClientBuilder(t *testing.T) {
	t.Parallel()

	builder := NewHttpClientBuilder()

	assert.Equal(t, HttpTimeout, builder.clientTimeout)
	assert.Equal(t, 10*time.Second, builder.tlsHandshakeTimeout)
	assert.Equal(t, 10*time.Second, builder.responseHeaderTimeout)
	assert.Empty(t, builder.caCertPath)
	assert.False(t, builder.insecureAllowHTTP)
}

func TestHttpClientBuilder_WithTimeout(t *testing.T) {
	t.Parallel()

	builder := NewHttpClientBuilder()
	assert.Same(t, builder, builder.WithTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, builder.clientTimeout)

	builder.WithTimeout(0)
	assert.Equal(t, 5*time.Second, builder.clientTimeout)

	client, err := builder.Build()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)
}

func TestHttpClientBuilder_WithCABundle(t *testing.T) {
	t.Parallel()

	builder := NewHttpClientBuilder()
	path := "/path/to/ca.crt"

	assert.Same(t, builder, builder.WithCABundle(path))
	assert.Equal(t, path, builder.caCertPath)
}

func TestHttpClientBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		client, err := NewHttpClientBuilder().Build()
		require.NoError(t, err)
		assert.Equal(t, HttpTimeout, client.Timeout)

		transport, ok := client.Transport.(*ValidatingTransport)
		require.True(t, ok)
		assert.False(t, transport.InsecureAllowHTTP)
		_, ok = transport.Transport.(*http.Transport)
		assert.True(t, ok)
	})

	t.Run("missing CA bundle", func(t *testing.T) {
		t.Parallel()

		_, err := NewHttpClientBuilder().WithCABundle(filepath.Join(t.TempDir(), "missing.pem")).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read CA certificate bundle")
	})

	t.Run("invalid CA bundle", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		_, err := NewHttpClientBuilder().WithCABundle(path).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse CA certificate bundle")
	})
}

func TestValidatingTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	t.Run("localhost over http is allowed", func(t *testing.T) {
		t.Parallel()

		client := &http.Client{Transport: &ValidatingTransport{Transport: http.DefaultTransport}}
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
	})

	t.Run("remote http is rejected", func(t *testing.T) {
		t.Parallel()

		transport := &ValidatingTransport{Transport: http.DefaultTransport}
		req, err := http.NewRequest(http.MethodGet, "http://auth.chalmers.it/api", nil)
		require.NoError(t, err)

		_, err = transport.RoundTrip(req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not HTTPS scheme")
	})
}
