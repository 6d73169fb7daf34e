// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/jhalloran/jobdeck-tui/internal/model"
)

// Configuration constants for the JobDeck API.
const (
	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size for
	// non-streaming endpoints. Prevents memory exhaustion on a
	// misbehaving server.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

var (
	// ErrNotConfigured indicates the client has no base URL set.
	ErrNotConfigured = errors.New("backend URL not configured")
)

// Error represents a non-success response from the JobDeck API.
// Detail carries the backend's structured {"detail": ...} message when the
// body contained one, otherwise the HTTP status text.
type Error struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Detail)
}

// apiErrorBody is the backend's structured error payload.
type apiErrorBody struct {
	Detail string `json:"detail"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the JobDeck backend chat API.
//
// Two underlying HTTP clients are used: a pooled one with a request timeout
// for the JSON endpoints, and one without a timeout for response streams,
// which are unbounded and controlled via context instead. Both share the
// cookie jar so the ambient session cookie rides on every request.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	jar          http.CookieJar
	userAgent    string
}

// NewClient creates a new client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	// cookiejar.New only errors on bad PublicSuffixList options; nil is fine.
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   DefaultTimeout,
		},
		// No timeout for streaming, controlled via context.
		streamClient: &http.Client{
			Transport: transport,
			Jar:       jar,
		},
		jar:       jar,
		userAgent: "jobdeck-tui/0.1.0",
	}
}

// WithTimeout sets the request timeout for non-streaming requests.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithSessionCookie seeds the cookie jar with the backend session cookie.
// The TUI has no browser to inherit credentials from, so the cookie value
// comes from configuration.
func (c *Client) WithSessionCookie(name, value string) *Client {
	if name == "" || value == "" {
		return c
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c
	}
	c.jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	return c
}

// IsConfigured returns true if the client has a base URL set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// setHeaders sets the common headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// =============================================================================
// SESSION ENDPOINTS
// =============================================================================

// ListSessions fetches the user's chat sessions, most recent first.
// The order is defined by the backend and is not re-sorted locally.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := c.getJSON(ctx, "/api/ai/chat/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession creates a new, empty chat session.
func (c *Client) CreateSession(ctx context.Context) (model.Session, error) {
	var session model.Session
	if err := c.postJSON(ctx, "/api/ai/chat/sessions", nil, &session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// ListMessages fetches the message history of a session, oldest first.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	var messages []model.Message
	path := "/api/ai/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
	if err := c.getJSON(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// postJSON performs a POST request and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, body io.Reader, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	slog.Debug("api response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// decodeError converts a non-success response into an *Error, preferring the
// backend's structured {"detail": ...} message over the HTTP status text.
func decodeError(statusCode int, body []byte) error {
	var apiErr apiErrorBody
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
		return &Error{Status: statusCode, Detail: apiErr.Detail}
	}

	detail := http.StatusText(statusCode)
	if detail == "" {
		detail = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &Error{Status: statusCode, Detail: detail}
}
