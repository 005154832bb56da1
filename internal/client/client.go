// Package client talks JSON to the task API and hands back normalized records.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/metrics"
)

const (
	maxBodySize   = 10 << 20
	maxErrorRunes = 200
)

// Client is the task API client. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New creates a client for the API at baseURL.
func New(baseURL string, httpClient *http.Client, log *slog.Logger, m *metrics.Metrics) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		log:     log.With(slog.String("division", "client")),
		metrics: m,
	}, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type request struct {
	method string
	// endpoint is the route template used as the metrics label, e.g. "GET /tasks/{id}".
	endpoint string
	// path is already escaped: ids are passed through url.PathEscape by the callers.
	path        string
	query       url.Values
	body        any
	rawBody     io.Reader
	contentType string
}

// endpointURL joins the escaped request path onto the base URL without escaping it a second time.
func (c *Client) endpointURL(path string, query url.Values) (string, error) {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u.Path = unescaped
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// do sends the request and decodes a 2xx body into out, when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	payload := r.rawBody
	contentType := r.contentType
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", r.endpoint, err)
		}
		payload = bytes.NewReader(buf)
		contentType = "application/json"
	}

	target, err := c.endpointURL(r.path, r.query)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, payload)
	if err != nil {
		return fmt.Errorf("failed to create new request %s: %w", r.endpoint, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(r.endpoint, "error").Inc()
		return fmt.Errorf("failed to request %s: %w", r.endpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.UpstreamRequests.WithLabelValues(r.endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body of %s: %w", r.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     r.method,
			Path:       r.path,
			StatusCode: resp.StatusCode,
			Body:       errorMessage(body),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.expireSession(ctx)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w from %s: %w", ErrMalformedResponse, r.endpoint, err)
	}
	return nil
}

func (c *Client) expireSession(ctx context.Context) {
	s, ok := auth.FromContext(ctx)
	if !ok || s.Invalidated() {
		return
	}
	s.Invalidate()
	c.metrics.SessionsExpired.Inc()
	c.log.InfoContext(ctx, "Session rejected by API", "user_id", s.UserID)
}

// errorMessage extracts {"message"} or {"error"} from an error body, falling back to the trimmed text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	text := []rune(strings.TrimSpace(string(body)))
	if len(text) > maxErrorRunes {
		text = text[:maxErrorRunes]
	}
	return string(text)
}

// Ping checks that the API answers at all. Any HTTP status counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("task api is unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

// IsUnauthorized reports whether err is the API rejecting the session.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

