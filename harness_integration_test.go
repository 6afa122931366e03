//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/dynamic360/partnercenter-bridge/internal/enhance"
	"github.com/dynamic360/partnercenter-bridge/internal/identity"
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/dynamic360/partnercenter-bridge/internal/server"
	"github.com/dynamic360/partnercenter-bridge/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// APITestHarness runs the bridge against fake identity and Partner Center
// servers.
type APITestHarness struct {
	t                 *testing.T
	Server            *httptest.Server
	IdentityMock      *testhelpers.MockIdentityServer
	PartnerCenterMock *testhelpers.MockPartnerCenterServer
	Tokens            *identity.Cache
}

// APITestHarnessOption adjusts the configuration before the bridge starts.
type APITestHarnessOption func(*config.Config)

// WithSafetyMargin overrides the token safety margin.
func WithSafetyMargin(margin time.Duration) APITestHarnessOption {
	return func(cfg *config.Config) {
		cfg.PartnerCenter.TokenSafetyMargin = margin
	}
}

// WithCredentialStore keeps credentials in the given store instead of memory.
func WithCredentialStore(store config.StoreConfig) APITestHarnessOption {
	return func(cfg *config.Config) {
		cfg.Store = store
	}
}

func NewAPITestHarness(t *testing.T, options ...APITestHarnessOption) *APITestHarness {
	t.Helper()

	hooks := &server.Hooks{}
	t.Cleanup(func() {
		_ = hooks.Run(context.Background())
	})

	harness := &APITestHarness{
		t:                 t,
		IdentityMock:      testhelpers.SetupMockIdentityServer(t),
		PartnerCenterMock: testhelpers.SetupMockPartnerCenterServer(t),
	}

	cfg := config.Config{
		PartnerCenter: config.PartnerCenterConfig{
			ClientID:                "test-client",
			TenantID:                "test-tenant",
			ClientSecret:            "test-secret",
			AuthorityURL:            harness.IdentityMock.Server.URL,
			Scope:                   "https://api.partnercenter.microsoft.com/.default",
			APIURL:                  harness.PartnerCenterMock.Server.URL,
			Category:                "manufacturing",
			Platform:                "dynamics365",
			TokenSafetyMargin:       5 * time.Minute,
			TokenAcquisitionTimeout: 5 * time.Second,
			RequestTimeout:          5 * time.Second,
		},
		Enhance: config.EnhanceConfig{DefaultMarketSize: 50},
		Observe: config.ObserveConfig{Enabled: false},
	}

	for _, opt := range options {
		opt(&cfg)
	}

	client, tokens, err := partnercenter.Connect(context.Background(), cfg.PartnerCenter, cfg.Store, http.DefaultClient)
	require.NoError(t, err)
	hooks.AddCloser("credential-cache", tokens)
	harness.Tokens = tokens

	svc := enhance.New(client,
		enhance.WithCategory(client.Category()),
		enhance.WithDefaultMarketSize(cfg.Enhance.DefaultMarketSize),
	)

	harness.Server = httptest.NewServer(configureServerRoutes(client, svc))
	hooks.Add("api-server", func(context.Context) error {
		harness.Server.Close()
		return nil
	})

	return harness
}

func (h *APITestHarness) Client() *TestClient {
	return &TestClient{
		baseURL: h.Server.URL,
		client:  http.DefaultClient,
	}
}

// TestClient provides access to the bridge's routes for testing.
type TestClient struct {
	baseURL string
	client  *http.Client
}

// Response wraps raw HTTP response for low-level assertions.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Request performs a low-level HTTP request and returns the raw response.
func (c *TestClient) Request(method, path string, body io.Reader) (*Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}

// RequestJSON performs a request with payload marshalled as the body and
// decodes the response into a map.
func (c *TestClient) RequestJSON(method, path string, payload any) (map[string]any, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.Request(method, path, body)
	if err != nil {
		return nil, 0, err
	}

	var result map[string]any
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &result); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return result, resp.StatusCode, nil
}

// EnhanceResearch posts to /enhance/research and decodes the result.
func (c *TestClient) EnhanceResearch(req enhance.ResearchRequest) (*enhance.ResearchResult, error) {
	return postTyped[enhance.ResearchResult](c, "/enhance/research", req)
}

// EnhanceSpecification posts to /enhance/specification and decodes the result.
func (c *TestClient) EnhanceSpecification(req enhance.SpecificationRequest) (*enhance.SpecificationResult, error) {
	return postTyped[enhance.SpecificationResult](c, "/enhance/specification", req)
}

func postTyped[T any](c *TestClient, path string, payload any) (*T, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.Request(http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, resp.Body)
	}

	var result T
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &result, nil
}
