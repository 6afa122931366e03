// Package partnercenter is a typed client for the Partner Center marketplace
// analytics API.
package partnercenter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/audit"
	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/dynamic360/partnercenter-bridge/internal/observe"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// TokenProvider supplies the bearer credential attached to every call.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// Client issues calls against the Partner Center API. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	tokens     TokenProvider
	baseURL    *url.URL
	timeout    time.Duration

	category string
	platform string
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(cfg config.PartnerCenterConfig, tokens TokenProvider, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("a token provider is required")
	}

	baseURL, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse partner center API URL: %w", err)
	}
	if !baseURL.IsAbs() {
		return nil, fmt.Errorf("partner center API URL must be absolute: %s", cfg.APIURL)
	}

	c := &Client{
		httpClient: http.DefaultClient,
		tokens:     tokens,
		baseURL:    baseURL,
		timeout:    cfg.RequestTimeout,
		category:   cfg.Category,
		platform:   cfg.Platform,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Category is the solution category used where a call does not name one.
func (c *Client) Category() string {
	return c.category
}

type endpoint struct {
	name   string
	method string
	path   []string
	query  url.Values
}

// fetch performs a call and returns the decoded, normalized response. The
// result is nil whenever the error is not.
func fetch[T any, PT interface {
	*T
	normalizer
}](ctx context.Context, c *Client, ep endpoint, body any) (*T, error) {
	var out T
	if err := c.call(ctx, ep, body, PT(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, ep endpoint, body any, out normalizer) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		call := audit.UpstreamCall{Endpoint: ep.name, Status: status, Duration: time.Since(start)}
		if err != nil {
			call.Error = err.Error()
		}
		audit.Log(ctx).RecordCall(call)
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	failed := func(status int, err error) error {
		return &RemoteCallError{Endpoint: ep.name, StatusCode: status, Cause: err}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return failed(0, err)
	}

	req, err := c.newRequest(ctx, ep, body)
	if err != nil {
		return failed(0, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed(0, fmt.Errorf("connection failed: %w", err))
	}
	status = resp.StatusCode
	defer func(body io.ReadCloser) {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			// the credential was rejected despite being in date: make sure the
			// next call does not present it again
			if err := c.tokens.Invalidate(ctx); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate rejected access token")
			}
		}

		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return failed(resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return failed(resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	out.normalize()

	return nil
}

func (c *Client) newRequest(ctx context.Context, ep endpoint, body any) (*http.Request, error) {
	u := c.baseURL.JoinPath(ep.path...)
	if len(ep.query) > 0 {
		u.RawQuery = ep.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := observe.CorrelationID(ctx); id != "" {
		req.Header.Set(observe.CorrelationIDHeader, id)
	}

	return req, nil
}

// displayName renders a lowercase identifier ("manufacturing", "dynamics365")
// the way request bodies expect it ("Manufacturing", "Dynamics365").
func displayName(s string) string {
	return cases.Title(language.English).String(s)
}
