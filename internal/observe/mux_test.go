package observe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		name           string
		pattern        string
		expectedMethod string
		expectedRoute  string
	}{
		{
			name:           "GET with wildcard",
			pattern:        "GET /marketplace/competitive/{category}",
			expectedMethod: "GET",
			expectedRoute:  "/marketplace/competitive/{category}",
		},
		{
			name:           "POST",
			pattern:        "POST /enhance/research",
			expectedMethod: "POST",
			expectedRoute:  "/enhance/research",
		},
		{
			name:           "extra whitespace after method",
			pattern:        "GET   /healthcheck",
			expectedMethod: "GET",
			expectedRoute:  "/healthcheck",
		},
		{
			name:          "path without method",
			pattern:       "/pricing/benchmarks/",
			expectedRoute: "/pricing/benchmarks/",
		},
		{
			name:          "unknown method prefix",
			pattern:       "FETCH /path",
			expectedRoute: "FETCH /path",
		},
		{
			name:          "lowercase method",
			pattern:       "post /enhance/research",
			expectedRoute: "post /enhance/research",
		},
		{
			name:          "method alone",
			pattern:       "GET",
			expectedRoute: "GET",
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, route := SplitPattern(tt.pattern)
			assert.Equal(t, tt.expectedMethod, method)
			assert.Equal(t, tt.expectedRoute, route)
		})
	}
}

func TestMux_RoutesThroughTelemetryHandler(t *testing.T) {
	mux := NewMux(http.NewServeMux())

	var seen string
	mux.Handle("GET /pricing/benchmarks/{category}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.PathValue("category")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pricing/benchmarks/manufacturing", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "manufacturing", seen)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pricing/benchmarks/manufacturing", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
