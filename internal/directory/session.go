// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
	"github.com/canonical/device-audit/internal/tracing"
)

const (
	AuthModeDevice            = "device"
	AuthModeClientCredentials = "client_credentials"

	DefaultAuthority = "https://login.microsoftonline.com"
	DefaultBaseURL   = "https://graph.microsoft.com/v1.0"
)

// DefaultScopes are the read permissions needed to resolve users and list
// their registered devices.
var DefaultScopes = []string{"User.Read.All", "Device.Read.All"}

// identity scopes requested alongside the directory ones in a delegated session
var identityScopes = []string{oidc.ScopeOpenID, "profile", oidc.ScopeOfflineAccess}

type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	AuthMode     string
	Authority    string
	BaseURL      string
	Scopes       []string
	Timeout      time.Duration

	// Prompt receives the sign-in instructions of the device code flow.
	Prompt io.Writer
}

func (c *Config) tenantURL() string {
	return strings.TrimSuffix(c.Authority, "/") + "/" + c.TenantID
}

func (c *Config) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:       c.tenantURL() + "/oauth2/v2.0/authorize",
		DeviceAuthURL: c.tenantURL() + "/oauth2/v2.0/devicecode",
		TokenURL:      c.tenantURL() + "/oauth2/v2.0/token",
		AuthStyle:     oauth2.AuthStyleInParams,
	}
}

func (c *Config) jwksURL() string {
	return c.tenantURL() + "/discovery/v2.0/keys"
}

// appScope is the single scope of an app-only token, permissions are the
// application roles granted to the client.
func (c *Config) appScope() string {
	u := strings.TrimSuffix(c.BaseURL, "/")
	if i := strings.Index(u, "://"); i >= 0 {
		if j := strings.Index(u[i+3:], "/"); j >= 0 {
			u = u[:i+3+j]
		}
	}

	return u + "/.default"
}

// Connect opens a session on the directory. The caller owns the returned
// client and must call Disconnect once done, on every path.
func Connect(ctx context.Context, cfg *Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Client, error) {
	ctx, span := tracer.Start(ctx, "directory.Connect")
	defer span.End()

	base := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	var (
		ts      oauth2.TokenSource
		account string
		err     error
	)

	switch cfg.AuthMode {
	case AuthModeClientCredentials:
		ts, err = clientCredentialsSession(ctx, cfg, logger)
	case AuthModeDevice, "":
		ts, account, err = deviceCodeSession(ctx, cfg, logger)
	default:
		err = fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}

	if err != nil {
		_ = monitor.SetDependencyAvailability(map[string]string{"component": "login"}, 0)
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	_ = monitor.SetDependencyAvailability(map[string]string{"component": "login"}, 1)

	c, err := NewClient(cfg.BaseURL, base, ts, cfg.Timeout, tracer, monitor, logger)
	if err != nil {
		return nil, err
	}
	c.Account = account

	if account != "" {
		logger.Infof("Connected to the directory as %s", account)
	} else {
		logger.Infof("Connected to the directory with client %s", cfg.ClientID)
	}

	return c, nil
}

func clientCredentialsSession(ctx context.Context, cfg *Config, logger logging.LoggerInterface) (oauth2.TokenSource, error) {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.endpoint().TokenURL,
		Scopes:       []string{cfg.appScope()},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	logger.Debugf("Requesting an app-only token for %v, configured scopes %v must be granted as application permissions", cc.Scopes, cfg.Scopes)

	// fetch a first token so a rejected credential fails the connection
	if _, err := cc.Token(ctx); err != nil {
		return nil, err
	}

	return cc.TokenSource(ctx), nil
}

func deviceCodeSession(ctx context.Context, cfg *Config, logger logging.LoggerInterface) (oauth2.TokenSource, string, error) {
	conf := &oauth2.Config{
		ClientID: cfg.ClientID,
		Endpoint: cfg.endpoint(),
		Scopes:   append(append([]string{}, cfg.Scopes...), identityScopes...),
	}

	da, err := conf.DeviceAuth(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("device authorization request failed: %v", err)
	}

	prompt := fmt.Sprintf("To sign in, open %s and enter the code %s", da.VerificationURI, da.UserCode)
	if cfg.Prompt != nil {
		fmt.Fprintln(cfg.Prompt, prompt)
	} else {
		logger.Info(prompt)
	}

	tok, err := conf.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, "", err
	}

	account, err := verifyIDToken(ctx, cfg, tok)
	if err != nil {
		return nil, "", err
	}

	return conf.TokenSource(ctx, tok), account, nil
}

// verifyIDToken checks the signature of the ID token issued with a delegated
// session and returns the signed-in account. Tokens without ID token yield an
// empty account.
func verifyIDToken(ctx context.Context, cfg *Config, tok *oauth2.Token) (string, error) {
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", nil
	}

	if client, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
		ctx = oidc.ClientContext(ctx, client)
	}

	// multi tenant authorities issue tokens for the tenant of the account, not
	// the configured one
	verifier := oidc.NewVerifier(
		cfg.tenantURL()+"/v2.0",
		oidc.NewRemoteKeySet(ctx, cfg.jwksURL()),
		&oidc.Config{ClientID: cfg.ClientID, SkipIssuerCheck: true},
	)

	idToken, err := verifier.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to verify ID token: %v", err)
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("failed to parse ID token claims: %v", err)
	}

	if claims.PreferredUsername != "" {
		return claims.PreferredUsername, nil
	}

	return claims.Name, nil
}
