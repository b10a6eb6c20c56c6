// Copyright 2026 The Coffer Authors
// SPDX-License-Identifier: Apache-2.0

package coffer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/chinnucsk/coffercli/lib/netutil"
)

// defaultPoolSize bounds the idle connections kept to the server when
// the caller does not size the pool explicitly.
const defaultPoolSize = 8

// Config holds configuration for Dial.
type Config struct {
	// ServerURL is the base URL of the Coffer server (e.g., "http://localhost:7000").
	ServerURL string
	// PoolSize caps the idle connections retained to the server. Zero
	// selects defaultPoolSize.
	PoolSize int
	// HTTPClient is used for all requests. If nil, a pooled client
	// sized by PoolSize is constructed. Timeout policy belongs here or
	// in request contexts; the client itself never imposes one.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// Connection is a handle on one Coffer server. It holds the base URL
// and the pooled HTTP transport, shared across Storage handles. Dial
// does not touch the network; the first request does.
type Connection struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	closed     atomic.Bool
}

// Dial validates the configuration and returns a Connection.
func Dial(config Config) (*Connection, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("coffer: ServerURL is required")
	}

	// Validate the URL structure. We store the string form (with
	// trailing slash stripped) and build request URLs by direct
	// concatenation.
	if _, err := url.Parse(config.ServerURL); err != nil {
		return nil, fmt.Errorf("coffer: invalid ServerURL %q: %w", config.ServerURL, err)
	}

	poolSize := config.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		transport := cleanhttp.DefaultPooledTransport()
		transport.MaxIdleConnsPerHost = poolSize
		httpClient = &http.Client{Transport: transport}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Connection{
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		userAgent:  config.UserAgent,
	}, nil
}

// Ping checks that the server is reachable: HEAD on the base URL, 200
// means reachable. Any other status or a transport failure is an
// error.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	request, err := c.newRequest(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("coffer: ping failed: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return classifyStatus(response.StatusCode, netutil.ErrorBody(response.Body))
	}
	return nil
}

// Containers lists the containers the server exposes.
func (c *Connection) Containers(ctx context.Context) ([]string, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	request, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/containers", nil)
	if err != nil {
		return nil, err
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("coffer: listing containers: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, classifyStatus(response.StatusCode, netutil.ErrorBody(response.Body))
	}

	var listing struct {
		Containers []string `json:"containers"`
	}
	if err := netutil.DecodeResponse(response.Body, &listing); err != nil {
		return nil, fmt.Errorf("coffer: parsing container listing: %w", err)
	}
	return listing.Containers, nil
}

// Storage binds a named container on this connection. The name becomes
// a path segment of every request the handle issues.
func (c *Connection) Storage(name string) *Storage {
	return &Storage{
		conn: c,
		name: name,
		url:  c.baseURL + "/" + url.PathEscape(name),
	}
}

// Close marks the connection unusable and releases the idle
// connections in the transport pool. Close is idempotent; operations
// after Close fail with ErrConnectionClosed. Sessions already in
// flight are not interrupted.
func (c *Connection) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Connection) checkOpen() error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	return nil
}

// newRequest builds a request carrying the connection's standing
// headers.
func (c *Connection) newRequest(ctx context.Context, method, requestURL string, body io.Reader) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("coffer: building %s request: %w", method, err)
	}
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	return request, nil
}

// requestOutcome carries the result of an asynchronously launched
// request.
type requestOutcome struct {
	response *http.Response
	err      error
}

// startRequest issues the request on its own goroutine and returns the
// one-shot channel its outcome is delivered on. The transport closes
// the request body (the pipe read side) when the exchange ends, which
// unblocks any writer still feeding it.
func (c *Connection) startRequest(request *http.Request) <-chan requestOutcome {
	outcome := make(chan requestOutcome, 1)
	go func() {
		response, err := c.httpClient.Do(request)
		outcome <- requestOutcome{response: response, err: err}
	}()
	return outcome
}
