// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authcode

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/stacklok/gamma/pkg/networking"
)

// CallbackServer receives the redirect that ends the authorization step of
// the flow. It listens on the host and port of a loopback redirect URI and
// accepts a single callback on the URI's path.
type CallbackServer struct {
	listener net.Listener
	server   *http.Server
	path     string
	rawPath  string
	results  chan callbackResult
}

type callbackResult struct {
	code string
	err  error
}

// NewCallbackServer binds a listener for redirectURI, which must point at
// localhost or a loopback address. Port 0 picks a free port; see Addr.
func NewCallbackServer(redirectURI string) (*CallbackServer, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	if parsed.Scheme != networking.HttpScheme {
		return nil, fmt.Errorf("redirect URI %s must use the http scheme to be served locally", redirectURI)
	}
	if !networking.IsLocalhost(parsed.Host) {
		return nil, fmt.Errorf("redirect URI %s does not point at this machine", redirectURI)
	}

	port := parsed.Port()
	if port == "" {
		port = "80"
	}
	listener, err := net.Listen("tcp", net.JoinHostPort(parsed.Hostname(), port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for the OAuth callback: %w", err)
	}

	path, rawPath := parsed.Path, parsed.EscapedPath()
	if path == "" {
		path, rawPath = "/", "/"
	}

	s := &CallbackServer{
		listener: listener,
		path:     path,
		rawPath:  rawPath,
		results:  make(chan callbackResult, 1),
	}

	// handleCallback matches the path itself; it is not a valid ServeMux
	// pattern in general.
	s.server = &http.Server{
		Handler:           http.HandlerFunc(s.handleCallback),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Addr is the address the server listens on.
func (s *CallbackServer) Addr() net.Addr {
	return s.listener.Addr()
}

// URL is the callback URL as actually served, with the bound port.
func (s *CallbackServer) URL() string {
	return fmt.Sprintf("http://%s%s", s.Addr().String(), s.rawPath)
}

// Start serves callbacks in the background until Wait returns or Close is called.
func (s *CallbackServer) Start() {
	go func() {
		_ = s.server.Serve(s.listener)
	}()
}

// Wait blocks until the first callback arrives or ctx is done and shuts the
// server down. It returns the authorization code, or the error Gamma
// reported in the redirect.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Close(shutdownCtx)
	}()

	select {
	case result := <-s.results:
		return result.code, result.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for OAuth callback: %w", ctx.Err())
	}
}

// Close stops the server.
func (s *CallbackServer) Close(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != s.path {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	var result callbackResult
	switch {
	case query.Get("error") != "":
		result.err = fmt.Errorf("authorization failed: %s %s", query.Get("error"), query.Get("error_description"))
	case query.Get("code") == "":
		result.err = errors.New("authorization callback is missing the code parameter")
	default:
		result.code = query.Get("code")
	}

	if result.err != nil {
		writePage(w, http.StatusBadRequest, page{Title: "Authentication Failed", Message: result.err.Error(), Class: "error"})
	} else {
		writePage(w, http.StatusOK, page{
			Title:   "Authentication Successful",
			Message: "You can close this window and return to the terminal.",
			Class:   "success",
		})
	}

	// Only the first callback counts.
	select {
	case s.results <- result:
	default:
	}
}

type page struct {
	Title   string
	Message string
	Class   string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; text-align: center; }
        .message { padding: 20px; border-radius: 5px; margin: 20px auto; max-width: 600px; }
        .success { background-color: #e7f6e7; border: 1px solid #b3e6b3; color: #006600; }
        .error { background-color: #ffe7e7; border: 1px solid #ffb3b3; color: #cc0000; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="message {{.Class}}"><p>{{.Message}}</p></div>
</body>
</html>
`))

func writePage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'; script-src 'none'; object-src 'none';")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, p)
}
