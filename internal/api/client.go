// Package api is the typed client for the diary backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/diarynotes/diary-go/internal/model"
)

const (
	DefaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20
)

// Credentials supplies the session for authenticated calls. It is consulted on every call.
type Credentials interface {
	AuthHeaders() map[string]string
	ProfileID() (string, bool)
}

// Client talks to the diary API. Construct one per process and share it.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	creds   Credentials
	log     *slog.Logger
	strict  bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithStrictParsing makes List report ErrParse for a malformed payload
// instead of returning an empty page.
func WithStrictParsing(strict bool) Option {
	return func(c *Client) { c.strict = strict }
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		creds:   creds,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type request struct {
	method  string
	path    []string
	query   url.Values
	headers map[string]string
	body    any
}

// do sends req and decodes the envelope of a 2xx response.
// An undecodable 2xx body yields a zero Envelope, which callers treat as success=false.
func (c *Client) do(ctx context.Context, req request) (model.Envelope, error) {
	target := c.baseURL.JoinPath(req.path...)
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return model.Envelope{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn("api request failed", "method", req.method, "path", target.Path, "error", err)
		return model.Envelope{}, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		"method", req.method,
		"path", target.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return model.Envelope{}, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.Envelope{}, fmt.Errorf("%w: read body: %w", ErrConnection, err)
	}

	var env model.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Warn("api response is not an envelope", "path", target.Path, "error", err)
		return model.Envelope{}, nil
	}
	return env, nil
}

// session returns the auth headers and profile id for an authenticated call.
func (c *Client) session() (map[string]string, string, error) {
	if c.creds == nil {
		return nil, "", ErrUnauthenticated
	}
	headers := c.creds.AuthHeaders()
	if len(headers) == 0 {
		return nil, "", ErrUnauthenticated
	}
	profileID, ok := c.creds.ProfileID()
	if !ok {
		return nil, "", fmt.Errorf("%w: medical profile id not found", ErrUnauthenticated)
	}
	return headers, profileID, nil
}
