// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	"github.com/microsoft/kiota-abstractions-go/authentication"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	"golang.org/x/oauth2"

	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
)

var (
	userSelect   = []string{"id", "displayName", "userPrincipalName", "accountEnabled"}
	deviceSelect = []string{"id"}
)

var _ ClientInterface = (*Client)(nil)

// Client talks to Microsoft Graph through the Graph SDK, every request carries
// a token of the session.
type Client struct {
	baseURL string
	timeout time.Duration

	mu      sync.RWMutex
	http    *http.Client
	adapter *msgraphsdk.GraphRequestAdapter
	graph   *msgraphsdk.GraphServiceClient
	closed  bool

	// Account is the signed-in user of a delegated session, empty for app-only sessions.
	Account string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) GetUser(ctx context.Context, identifier string) (*types.DirectoryUser, error) {
	ctx, span := c.tracer.Start(ctx, "directory.Client.GetUser")
	defer span.End()

	graph, adapter, err := c.session()
	if err != nil {
		return nil, &LookupError{Identifier: identifier, Err: err}
	}

	ctx, cancel := c.requestContext(ctx, "users.get")
	defer cancel()

	var u models.Userable
	if strings.HasPrefix(identifier, "$") {
		u, err = users.NewUserItemRequestBuilder(c.userKeyURL(identifier), adapter).Get(ctx, nil)
	} else {
		u, err = graph.Users().ByUserId(identifier).Get(ctx, &users.UserItemRequestBuilderGetRequestConfiguration{
			QueryParameters: &users.UserItemRequestBuilderGetQueryParameters{Select: userSelect},
		})
	}
	if err != nil {
		return nil, &LookupError{Identifier: identifier, Err: graphError(err)}
	}

	if u == nil || value(u.GetId()) == "" {
		return nil, &LookupError{Identifier: identifier, Err: errors.New("directory returned an account without id")}
	}

	return &types.DirectoryUser{
		ID:                value(u.GetId()),
		DisplayName:       value(u.GetDisplayName()),
		UserPrincipalName: value(u.GetUserPrincipalName()),
		AccountEnabled:    value(u.GetAccountEnabled()),
	}, nil
}

func (c *Client) HasRegisteredDevice(ctx context.Context, userID string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "directory.Client.HasRegisteredDevice")
	defer span.End()

	graph, _, err := c.session()
	if err != nil {
		return false, &DeviceLookupError{UserID: userID, Err: err}
	}

	ctx, cancel := c.requestContext(ctx, "users.registeredDevices.list")
	defer cancel()

	top := int32(1)
	page, err := graph.Users().ByUserId(userID).RegisteredDevices().Get(ctx, &users.ItemRegisteredDevicesRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.ItemRegisteredDevicesRequestBuilderGetQueryParameters{Top: &top, Select: deviceSelect},
	})
	if err != nil {
		return false, &DeviceLookupError{UserID: userID, Err: graphError(err)}
	}

	if page == nil {
		return false, &DeviceLookupError{UserID: userID, Err: errors.New("directory returned an empty answer")}
	}

	return len(page.GetValue()) > 0, nil
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	c.http = nil
	c.adapter = nil
	c.graph = nil

	c.logger.Debug("Directory session closed")
}

func (c *Client) session() (*msgraphsdk.GraphServiceClient, *msgraphsdk.GraphRequestAdapter, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, nil, ErrSessionClosed
	}

	return c.graph, c.adapter, nil
}

// requestContext bounds a single request by the client timeout and tags it
// with the route reported in the metrics.
func (c *Client) requestContext(ctx context.Context, route string) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, routeKey{}, route)

	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}

	return ctx, func() {}
}

// userKeyURL addresses a user with the key syntax, required for principal
// names starting with "$".
func (c *Client) userKeyURL(identifier string) string {
	key := url.PathEscape(strings.ReplaceAll(identifier, "'", "''"))
	return c.baseURL + "/users('" + key + "')?$select=" + strings.Join(userSelect, ",")
}

func (c *Client) observe(route, status string, start time.Time) {
	if err := c.monitor.SetResponseTimeMetric(
		map[string]string{"route": route, "status": status},
		time.Since(start).Seconds(),
	); err != nil {
		c.logger.Debugf("Failed to record response time: %v", err)
	}

	available := 1.0
	if status == "error" || strings.HasPrefix(status, "5") {
		available = 0
	}
	if err := c.monitor.SetDependencyAvailability(map[string]string{"component": "graph"}, available); err != nil {
		c.logger.Debugf("Failed to record availability: %v", err)
	}
}

// graphError turns the errors of the Graph SDK into an APIError when the
// directory answered, transport errors are returned as is.
func graphError(err error) error {
	var odataErr *odataerrors.ODataError
	if errors.As(err, &odataErr) {
		e := &APIError{StatusCode: odataErr.ResponseStatusCode}
		if main := odataErr.GetErrorEscaped(); main != nil {
			e.Code = value(main.GetCode())
			e.Message = value(main.GetMessage())
		}
		return e
	}

	var apiErr *abstractions.ApiError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.ResponseStatusCode}
	}

	return err
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

type routeKey struct{}

// observedTransport reports latency and status of every directory request.
type observedTransport struct {
	next    http.RoundTripper
	observe func(route, status string, start time.Time)
}

func (t *observedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	route, _ := req.Context().Value(routeKey{}).(string)

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.observe(route, "error", start)
		return nil, err
	}

	t.observe(route, strconv.Itoa(resp.StatusCode), start)

	return resp, nil
}

func (t *observedTransport) CloseIdleConnections() {
	if ci, ok := t.next.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

// tokenProvider hands the tokens of the session to the Graph request adapter.
type tokenProvider struct {
	source oauth2.TokenSource
	hosts  authentication.AllowedHostsValidator
}

func (p *tokenProvider) GetAuthorizationToken(_ context.Context, _ *url.URL, _ map[string]interface{}) (string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	return tok.AccessToken, nil
}

func (p *tokenProvider) GetAllowedHostsValidator() *authentication.AllowedHostsValidator {
	return &p.hosts
}

// NewClient builds a Graph client on top of httpClient, authenticating every
// request with a token from tokens. timeout bounds every single request, zero
// disables the bound.
func NewClient(baseURL string, httpClient *http.Client, tokens oauth2.TokenSource, timeout time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Client, error) {
	c := new(Client)

	c.baseURL = strings.TrimSuffix(baseURL, "/")
	c.timeout = timeout

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c.http = &http.Client{
		Transport: &observedTransport{next: next, observe: c.observe},
		Timeout:   httpClient.Timeout,
	}

	auth := authentication.NewBaseBearerTokenAuthenticationProvider(&tokenProvider{source: tokens})

	adapter, err := msgraphsdk.NewGraphRequestAdapterWithParseNodeFactoryAndSerializationWriterFactoryAndHttpClient(auth, nil, nil, c.http)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph request adapter: %v", err)
	}
	adapter.SetBaseUrl(c.baseURL)

	c.adapter = adapter
	c.graph = msgraphsdk.NewGraphServiceClient(adapter)

	return c, nil
}
