// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/gitter/lib/netutil"
	"github.com/bureau-foundation/gitter/lib/secret"
	"github.com/bureau-foundation/gitter/lib/version"
)

// Default service endpoints.
const (
	DefaultAPIURL    = "https://api.gitter.im/v1"
	DefaultStreamURL = "https://stream.gitter.im/v1"
)

// ClientConfig holds configuration for creating a Client. It is copied
// by NewClient; changing it afterwards has no effect on the Client.
type ClientConfig struct {
	// APIURL is the REST base URL. Defaults to DefaultAPIURL.
	APIURL string
	// StreamURL is the streaming base URL. Defaults to DefaultStreamURL.
	StreamURL string
	// Token authenticates requests when non-nil. The Client borrows the
	// buffer; the caller keeps ownership and must not close it while
	// the Client is in use.
	Token *secret.Buffer
	// HTTPClient is used for REST requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// StreamHTTPClient is used for streaming requests. It must not set
	// a Timeout, which would cut long-lived streams. If nil, HTTPClient
	// is used.
	StreamHTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is
	// used.
	Logger *slog.Logger
}

// Client talks to one Gitter deployment. It is safe for concurrent use.
type Client struct {
	apiURL           string
	streamURL        string
	token            *secret.Buffer
	httpClient       *http.Client
	streamHTTPClient *http.Client
	logger           *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	apiURL, err := baseURL("APIURL", config.APIURL, DefaultAPIURL)
	if err != nil {
		return nil, err
	}
	streamURL, err := baseURL("StreamURL", config.StreamURL, DefaultStreamURL)
	if err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	streamHTTPClient := config.StreamHTTPClient
	if streamHTTPClient == nil {
		streamHTTPClient = httpClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		apiURL:           apiURL,
		streamURL:        streamURL,
		httpClient:       httpClient,
		streamHTTPClient: streamHTTPClient,
		logger:           logger,
	}
	return client.WithToken(config.Token), nil
}

// baseURL validates a configured base URL and strips trailing slashes.
// Request URLs are built by concatenation so escaped path segments are
// sent exactly as escaped.
func baseURL(field, value, fallback string) (string, error) {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("gitter: invalid %s %q: %w", field, value, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("gitter: %s %q must be an http or https URL", field, value)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("gitter: %s %q has no host", field, value)
	}
	return strings.TrimRight(value, "/"), nil
}

// WithToken returns a copy of the client that authenticates with token.
// A nil or empty token leaves the credentials unchanged. The receiver is
// not modified.
func (c *Client) WithToken(token *secret.Buffer) *Client {
	clone := *c
	if token != nil && token.Len() > 0 && strings.TrimSpace(token.String()) != "" {
		clone.token = token
	}
	return &clone
}

// Authenticated reports whether the client carries a token.
func (c *Client) Authenticated() bool {
	return c.token != nil
}

// APIURL returns the REST base URL.
func (c *Client) APIURL() string { return c.apiURL }

// StreamURL returns the streaming base URL.
func (c *Client) StreamURL() string { return c.streamURL }

// CloseIdleConnections closes idle pooled connections of the REST
// transport.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// getJSON performs a GET and decodes the JSON response into result.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("gitter: failed to parse %s response: %w", path, err)
	}
	return nil
}

// sendJSON performs a request with a JSON body and decodes the response
// into result unless result is nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, requestBody, result any) error {
	encoded, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("gitter: failed to encode request body: %w", err)
	}
	body, err := c.doRequest(ctx, method, path, nil, "application/json", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	return decodeOptional(path, body, result)
}

// sendForm performs a request with a form-encoded body and decodes the
// response into result.
func (c *Client) sendForm(ctx context.Context, method, path string, form url.Values, result any) error {
	body, err := c.doRequest(ctx, method, path, nil, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	return decodeOptional(path, body, result)
}

func decodeOptional(path string, body []byte, result any) error {
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("gitter: failed to parse %s response: %w", path, err)
	}
	return nil
}

// doRequest sends one REST request and returns the response body of a
// 2xx response. Other statuses return an *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, contentType string, requestBody io.Reader) ([]byte, error) {
	requestURL := c.apiURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, requestBody)
	if err != nil {
		return nil, fmt.Errorf("gitter: failed to create request: %w", err)
	}
	c.setHeaders(request)
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("gitter: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("gitter: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}
	return nil, newAPIError(response.StatusCode, responseBody)
}

func (c *Client) setHeaders(request *http.Request) {
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())
	if c.token != nil {
		// The token becomes a heap string only at the header boundary.
		request.Header.Set("Authorization", "Bearer "+c.token.String())
	}
}

// newAPIError builds an *APIError from a failed response body.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Message == "" && apiErr.Detail == "") {
		apiErr.Message = ""
		apiErr.Detail = ""
		apiErr.Body = strings.TrimSpace(string(body))
	}
	return apiErr
}

// escape percent-encodes an identifier for use as one path segment.
func escape(segment string) string {
	return url.PathEscape(segment)
}

// requireID rejects empty identifiers before a request is sent.
func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("gitter: %s is required", name)
	}
	return nil
}
