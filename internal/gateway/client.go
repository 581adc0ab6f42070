// Package gateway implements HTTP clients for the remote poll and comment
// gateways. All authenticated calls attach the bearer credential from the
// session store.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"votecast/internal/models"
	"votecast/internal/observability"
	"votecast/internal/session"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client is the shared HTTP plumbing for both gateways.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions session.Store
	logger   *observability.GatewayLogger
	metrics  *observability.GatewayMetrics
}

// NewClient returns a Client for the given base URL. The session store may be
// nil for unauthenticated use.
func NewClient(baseURL string, timeout time.Duration, sessions session.Store) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
		logger:   observability.NewGatewayLogger("remote"),
		metrics:  observability.NewGatewayMetrics("remote"),
	}
}

// WithHTTPClient swaps the underlying http.Client; used in tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// do performs one round trip. A non-nil in is sent as a JSON body; a non-nil
// out receives the decoded JSON response. Authenticated calls fail with
// UNAUTHENTICATED before the network when no usable credential is stored.
func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	ctx, span := observability.Tracer.Start(ctx, fmt.Sprintf("gateway %s %s", method, path))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)
	done := c.metrics.TrackCall(method)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			done("error")
			return models.NewNetworkError("encoding request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		done("error")
		return models.NewNetworkError("building request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token, err := c.sessions.Get(ctx)
		if err != nil {
			done("error")
			return models.NewNetworkError("reading session credential", err)
		}
		if !session.Usable(token, time.Now()) {
			done("unauthenticated")
			return models.NewUnauthenticatedError("No active session")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		done("error")
		span.SetStatus(codes.Error, err.Error())
		c.logger.LogError(ctx, method, path, err)
		return models.NewNetworkError("gateway unreachable", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.LogCall(ctx, method, path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		done(fmt.Sprintf("http_%d", resp.StatusCode))
		return c.statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			done("error")
			return models.NewNetworkError("decoding response body", err)
		}
	}
	done("ok")
	return nil
}

// statusError maps a non-2xx response to the engine error taxonomy.
func (c *Client) statusError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)
	msg := payload.Error
	if msg == "" {
		msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return models.NewUnauthenticatedError(msg)
	case http.StatusNotFound:
		return models.NewNotFoundError("resource", resp.Request.URL.Path)
	default:
		return models.NewNetworkError(msg, fmt.Errorf("status %d", resp.StatusCode))
	}
}
