// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
	"github.com/canonical/device-audit/internal/tracing"
)

// newFakeDirectory serves the token endpoints of the tenant "contoso" and a
// users endpoint answering only to the issued access token.
func newFakeDirectory(t *testing.T, rejectClient bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/contoso/oauth2/v2.0/devicecode", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("client_id") != "app-id" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if !strings.Contains(r.Form.Get("scope"), "Device.Read.All") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"device_code":"dc","user_code":"ABCD-EFGH","verification_uri":"https://microsoft.com/devicelogin","expires_in":60,"interval":1}`)
	})

	mux.HandleFunc("/contoso/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		if rejectClient || r.Form.Get("client_id") != "app-id" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_client","error_description":"AADSTS7000215: Invalid client secret provided."}`)
			return
		}

		switch r.Form.Get("grant_type") {
		case "client_credentials":
			if r.Form.Get("scope") != "https://graph.example.com/.default" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":"invalid_scope"}`)
				return
			}
		case "urn:ietf:params:oauth:grant-type:device_code":
			if r.Form.Get("device_code") != "dc" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":"expired_token"}`)
				return
			}
		default:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"unsupported_grant_type"}`)
			return
		}

		fmt.Fprint(w, `{"access_token":"secret-token","token_type":"Bearer","expires_in":3600}`)
	})

	mux.HandleFunc("/v1.0/users/alice@example.com", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			writeGraphError(w, http.StatusUnauthorized, "InvalidAuthenticationToken", "Access token is empty.")
			return
		}
		writeGraphJSON(w, `{"id":"8f2a","displayName":"Alice Smith","userPrincipalName":"alice@example.com","accountEnabled":true}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func testConfig(server *httptest.Server, mode string) *Config {
	return &Config{
		TenantID:     "contoso",
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		AuthMode:     mode,
		Authority:    server.URL,
		BaseURL:      server.URL + "/v1.0",
		Scopes:       DefaultScopes,
		Timeout:      5 * time.Second,
	}
}

func TestConnectClientCredentials(t *testing.T) {
	server := newFakeDirectory(t, false)
	cfg := testConfig(server, AuthModeClientCredentials)
	// the app-only scope is derived from the host of the API
	cfg.BaseURL = "https://graph.example.com/v1.0"

	c, err := Connect(context.Background(), cfg, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("device-audit"), logging.NewNoopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Disconnect()

	if c.Account != "" {
		t.Fatalf("expected no account for an app-only session, got %q", c.Account)
	}
}

func TestConnectClientCredentialsRejected(t *testing.T) {
	server := newFakeDirectory(t, true)

	c, err := Connect(context.Background(), testConfig(server, AuthModeClientCredentials), tracing.NewNoopTracer(), monitoring.NewNoopMonitor("device-audit"), logging.NewNoopLogger())

	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_client") {
		t.Fatalf("expected the underlying message, got %q", err.Error())
	}
	if c != nil {
		t.Fatal("expected no client")
	}
}

func TestConnectDeviceCode(t *testing.T) {
	server := newFakeDirectory(t, false)
	cfg := testConfig(server, AuthModeDevice)
	cfg.ClientSecret = ""

	prompt := new(bytes.Buffer)
	cfg.Prompt = prompt

	c, err := Connect(context.Background(), cfg, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("device-audit"), logging.NewNoopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Disconnect()

	if !strings.Contains(prompt.String(), "https://microsoft.com/devicelogin") || !strings.Contains(prompt.String(), "ABCD-EFGH") {
		t.Fatalf("expected sign-in instructions, got %q", prompt.String())
	}

	u, err := c.GetUser(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("expected the session token to be used, got %v", err)
	}
	if u.ID != "8f2a" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestConnectUnsupportedMode(t *testing.T) {
	server := newFakeDirectory(t, false)

	_, err := Connect(context.Background(), testConfig(server, "password"), tracing.NewNoopTracer(), monitoring.NewNoopMonitor("device-audit"), logging.NewNoopLogger())
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestConfigAppScope(t *testing.T) {
	tests := []struct {
		baseURL  string
		expected string
	}{
		{baseURL: "https://graph.microsoft.com/v1.0", expected: "https://graph.microsoft.com/.default"},
		{baseURL: "https://graph.microsoft.us/beta/", expected: "https://graph.microsoft.us/.default"},
		{baseURL: "https://graph.microsoft.com", expected: "https://graph.microsoft.com/.default"},
	}

	for _, test := range tests {
		t.Run(test.baseURL, func(t *testing.T) {
			cfg := &Config{BaseURL: test.baseURL}
			if got := cfg.appScope(); got != test.expected {
				t.Fatalf("expected %q, got %q", test.expected, got)
			}
		})
	}
}
