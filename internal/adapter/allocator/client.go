package allocator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/storm-relief-allocator/internal/domain"
	"github.com/couchcryptid/storm-relief-allocator/internal/observability"
)

// Client posts allocation requests to the external allocation service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an allocation service client. A zero timeout means the
// request waits as long as its context allows.
func NewClient(endpoint string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Send performs exactly one POST of req and returns the decoded response
// body. Non-2xx responses are decoded the same way as 2xx responses.
func (c *Client) Send(ctx context.Context, req domain.AllocationRequest) (domain.AllocationResult, error) {
	body, err := domain.EncodeRequest(req)
	if err != nil {
		return domain.AllocationResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.AllocationResult{}, fmt.Errorf("%w: create request: %w", domain.ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.metrics.AllocatorDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.AllocatorRequests.WithLabelValues(observability.StatusClass(0)).Inc()
		return domain.AllocationResult{}, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()
	c.metrics.AllocatorRequests.WithLabelValues(observability.StatusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AllocationResult{}, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}
	if !json.Valid(raw) {
		return domain.AllocationResult{}, fmt.Errorf("%w: status %d: body is not JSON: %s",
			domain.ErrDecodeResponse, resp.StatusCode, snippet(raw))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("allocation service returned error status",
			"status", resp.StatusCode,
			"endpoint", c.endpoint,
		)
	}

	return domain.AllocationResult{Raw: raw, StatusCode: resp.StatusCode}, nil
}

// CheckReadiness reports whether the service's host accepts TCP connections.
// It dials only; no allocation request is sent.
func (c *Client) CheckReadiness(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return fmt.Errorf("allocation service %s unreachable: %w", host, err)
	}
	return conn.Close()
}

const maxSnippet = 120

func snippet(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > maxSnippet {
		return string(b[:maxSnippet]) + "..."
	}
	return string(b)
}
