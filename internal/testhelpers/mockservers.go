// Package testhelpers provides fake upstream services for tests that run the
// bridge end to end.
package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockIdentityServer is a client-credentials token endpoint.
type MockIdentityServer struct {
	Server     *httptest.Server
	Token      string        // access token to issue; a counter suffix is appended
	ExpiresIn  time.Duration // lifetime reported for each token
	StatusCode int           // status to answer with; 200 issues a token

	requests atomic.Int32
	mu       sync.Mutex
	lastForm map[string]string
}

// SetupMockIdentityServer serves POST /{tenant}/oauth2/v2.0/token.
func SetupMockIdentityServer(t *testing.T) *MockIdentityServer {
	t.Helper()

	mock := &MockIdentityServer{
		Token:      "test-access-token",
		ExpiresIn:  time.Hour,
		StatusCode: http.StatusOK,
	}

	router := http.NewServeMux()
	router.HandleFunc("POST /{tenant}/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		n := mock.requests.Add(1)

		if err := r.ParseForm(); err == nil {
			mock.mu.Lock()
			mock.lastForm = map[string]string{
				"grant_type":    r.PostForm.Get("grant_type"),
				"client_id":     r.PostForm.Get("client_id"),
				"client_secret": r.PostForm.Get("client_secret"),
				"scope":         r.PostForm.Get("scope"),
				"tenant":        r.PathValue("tenant"),
			}
			mock.mu.Unlock()
		}

		if mock.StatusCode != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(mock.StatusCode)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"AADSTS7000215: Invalid client secret provided."}`))
			return
		}

		WriteJSON(w, map[string]any{
			"access_token": fmt.Sprintf("%s-%d", mock.Token, n),
			"token_type":   "Bearer",
			"expires_in":   int(mock.ExpiresIn.Seconds()),
		})
	})

	mock.Server = httptest.NewServer(router)
	t.Cleanup(mock.Server.Close)
	return mock
}

// RequestCount is the number of token requests received.
func (m *MockIdentityServer) RequestCount() int {
	return int(m.requests.Load())
}

// LastForm returns selected fields of the most recent token request.
func (m *MockIdentityServer) LastForm() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastForm
}

// MockPartnerCenterServer answers every Partner Center endpoint with a fixed,
// fully populated payload.
type MockPartnerCenterServer struct {
	Server *httptest.Server

	mu          sync.Mutex
	failures    map[string]int
	requests    map[string]int
	authHeaders []string
}

// Route names accepted by Fail and Requests.
const (
	RouteIntelligence = "intelligence"
	RouteCompetitive  = "competitive"
	RouteRequirements = "requirements"
	RouteCompliance   = "compliance"
	RouteEcosystem    = "ecosystem"
	RoutePricing      = "pricing"
	RouteRevenue      = "revenue"
)

func SetupMockPartnerCenterServer(t *testing.T) *MockPartnerCenterServer {
	t.Helper()

	mock := &MockPartnerCenterServer{
		failures: map[string]int{},
		requests: map[string]int{},
	}

	router := http.NewServeMux()
	mock.handle(router, RouteIntelligence, "GET /v1/analytics/marketplace/solutions", IntelligenceFixture)
	mock.handle(router, RouteCompetitive, "GET /v1/analytics/marketplace/competitive/{category}", CompetitiveFixture)
	mock.handle(router, RouteRequirements, "GET /v1/partner/program/requirements/isv", RequirementsFixture)
	mock.handle(router, RouteCompliance, "POST /v1/marketplace/compliance/validate", ComplianceFixture)
	mock.handle(router, RouteEcosystem, "GET /v1/ecosystem/{platform}/{category}/updates", EcosystemFixture)
	mock.handle(router, RoutePricing, "GET /v1/analytics/pricing/benchmarks/{category}", PricingFixture)
	mock.handle(router, RouteRevenue, "POST /v1/analytics/revenue/projections", RevenueFixture)

	mock.Server = httptest.NewServer(router)
	t.Cleanup(mock.Server.Close)
	return mock
}

// Fail makes route answer with status until cleared with status 0.
func (m *MockPartnerCenterServer) Fail(route string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == 0 {
		delete(m.failures, route)
		return
	}
	m.failures[route] = status
}

// Requests is the number of calls route has received.
func (m *MockPartnerCenterServer) Requests(route string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[route]
}

// AuthorizationHeaders returns every Authorization header received, in order.
func (m *MockPartnerCenterServer) AuthorizationHeaders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.authHeaders...)
}

func (m *MockPartnerCenterServer) handle(router *http.ServeMux, route, pattern, fixture string) {
	router.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests[route]++
		m.authHeaders = append(m.authHeaders, r.Header.Get("Authorization"))
		status := m.failures[route]
		m.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixture))
	})
}

// WriteJSON is a helper function that writes a JSON response.
// It sets the Content-Type header and marshals the payload to JSON.
func WriteJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal JSON: %v", err), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(data)
}
