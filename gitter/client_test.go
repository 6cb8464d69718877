// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bureau-foundation/gitter/lib/secret"
	"github.com/bureau-foundation/gitter/lib/version"
)

const testToken = "4f9e1c2b7a3d"

// testBuffer creates a secret.Buffer from a string for test use.
func testBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("secret.NewFromString: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

// newTestClient starts an httptest server serving both the REST and the
// streaming endpoints and returns an authenticated client for it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		APIURL:    server.URL + "/v1/",
		StreamURL: server.URL + "/stream/v1",
		Token:     testBuffer(t, testToken),
		Logger:    slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

// requireAuth fails the request unless it carries the test token and
// asks for JSON.
func requireAuth(t *testing.T, request *http.Request) {
	t.Helper()
	if got := request.Header.Get("Authorization"); got != "Bearer "+testToken {
		t.Errorf("Authorization = %q, want bearer test token", got)
	}
	if got := request.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want application/json", got)
	}
	if got := request.Header.Get("User-Agent"); got != version.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", got, version.UserAgent())
	}
}

func writeJSON(t *testing.T, writer http.ResponseWriter, value any) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(value); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestNewClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient(ClientConfig{})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.APIURL() != DefaultAPIURL || client.StreamURL() != DefaultStreamURL {
			t.Errorf("URLs = %q, %q", client.APIURL(), client.StreamURL())
		}
		if client.Authenticated() {
			t.Error("client without a token reports Authenticated")
		}
	})

	t.Run("trailing slash stripped", func(t *testing.T) {
		client, err := NewClient(ClientConfig{APIURL: "http://localhost:8080/v1///"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.APIURL() != "http://localhost:8080/v1" {
			t.Errorf("APIURL = %q", client.APIURL())
		}
	})

	for _, bad := range []string{"://nope", "ftp://example.com", "http://"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			if _, err := NewClient(ClientConfig{APIURL: bad}); err == nil {
				t.Fatalf("NewClient(%q) succeeded, want error", bad)
			}
		})
	}
}

func TestWithToken(t *testing.T) {
	anonymous, err := NewClient(ClientConfig{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	authenticated := anonymous.WithToken(testBuffer(t, testToken))
	if !authenticated.Authenticated() {
		t.Fatal("WithToken did not authenticate the copy")
	}
	if anonymous.Authenticated() {
		t.Fatal("WithToken modified the receiver")
	}

	unchanged := authenticated.WithToken(testBuffer(t, "   "))
	if unchanged.token != authenticated.token {
		t.Error("a blank token replaced the existing one")
	}
	if authenticated.WithToken(nil).token != authenticated.token {
		t.Error("a nil token replaced the existing one")
	}
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json error", 401, `{"error":"Unauthorized"}`, "gitter: 401: Unauthorized"},
		{"json message", 400, `{"message":"uri is required"}`, "gitter: 400: uri is required"},
		{"both", 403, `{"error":"Forbidden","message":"not a member"}`, "gitter: 403: Forbidden: not a member"},
		{"plain body", 502, "Bad Gateway\n", "gitter: 502: Bad Gateway"},
		{"empty body", 404, "", "gitter: 404: Not Found"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(test.status)
				io.WriteString(writer, test.body)
			}))

			_, err := client.Rooms(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != test.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, test.status)
			}
			if apiErr.Error() != test.message {
				t.Errorf("Error() = %q, want %q", apiErr.Error(), test.message)
			}
			if !IsStatus(err, test.status) {
				t.Errorf("IsStatus(%d) = false", test.status)
			}
		})
	}

	if !IsUnauthorized(&APIError{StatusCode: 401}) || !IsNotFound(&APIError{StatusCode: 404}) {
		t.Error("IsUnauthorized/IsNotFound misclassified")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound matched a non-API error")
	}
}

func TestRequestFailure(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Rooms(ctx)
	if err == nil || !strings.Contains(err.Error(), "rooms failed") {
		t.Fatalf("error = %v, want wrapped request failure", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error does not wrap context.Canceled: %v", err)
	}
}
