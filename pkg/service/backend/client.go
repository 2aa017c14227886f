// Package backend is the HTTP client of the leak detection backend API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/leakwatch/leakwatch/pkg/utils/metrics"
	"github.com/leakwatch/leakwatch/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const (
	ViewReportsEndpoint = "/view_reports"
	LogsEndpoint        = "/logs"

	DefaultTimeout = 10 * time.Second

	// maxBodySize bounds how much of a response body is read
	maxBodySize = 8 << 20
)

// Client calls the backend API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = d
	}
}

// New creates a backend client for baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("backend base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid backend base URL", goerr.V("base_url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("backend base URL must be http or https", goerr.V("base_url", baseURL))
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ViewReports fetches GET {base}/view_reports
func (c *Client) ViewReports(ctx context.Context) (*model.ReportsResponse, error) {
	body, err := c.get(ctx, ViewReportsEndpoint)
	if err != nil {
		return nil, err
	}

	resp, err := model.ParseReportsResponse(body)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(ViewReportsEndpoint, "invalid").Inc()
		return nil, err
	}
	metrics.BackendRequests.WithLabelValues(ViewReportsEndpoint, "ok").Inc()
	return resp, nil
}

// Logs fetches GET {base}/logs
func (c *Client) Logs(ctx context.Context) (*model.LogsResponse, error) {
	body, err := c.get(ctx, LogsEndpoint)
	if err != nil {
		return nil, err
	}

	resp, err := model.ParseLogsResponse(body)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(LogsEndpoint, "invalid").Inc()
		return nil, err
	}
	metrics.BackendRequests.WithLabelValues(LogsEndpoint, "ok").Inc()
	return resp, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL.JoinPath(endpoint).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create backend request", goerr.V(model.EndpointKey, endpoint))
	}
	req.Header.Set("Accept", "application/json")

	logging.From(ctx).Debug("calling backend API", "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, goerr.Wrap(err, "failed to call backend API", goerr.V(model.EndpointKey, endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.BackendRequests.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, goerr.Wrap(err, "failed to read backend response", goerr.V(model.EndpointKey, endpoint))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.BackendRequests.WithLabelValues(endpoint, "status_error").Inc()
		return nil, newAPIError(endpoint, resp.StatusCode, body)
	}

	return body, nil
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	Endpoint   string
	StatusCode int
	// Detail is the "error" field of the response body, if any
	Detail string
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	apiErr := &APIError{Endpoint: endpoint, StatusCode: status}

	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Error.(string); ok {
			apiErr.Detail = s
		}
	}
	return apiErr
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend %s returned %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
}

// Message returns the backend's own error text, or "" when the body had none
func (e *APIError) Message() string {
	return e.Detail
}
