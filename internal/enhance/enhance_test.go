package enhance_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/enhance"
	"github.com/dynamic360/partnercenter-bridge/internal/identity"
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var fixedNow = time.Date(2025, time.April, 7, 14, 30, 0, 0, time.FixedZone("AEST", 10*60*60))

// fakeSource returns canned results, failing any call named in failures.
type fakeSource struct {
	failures map[string]error

	mu         sync.Mutex
	categories []string
	compliance partnercenter.ComplianceRequest
	revenue    partnercenter.RevenueRequest
}

func (f *fakeSource) fail(name string) error {
	return f.failures[name]
}

func (f *fakeSource) MarketplaceIntelligence(ctx context.Context) (*partnercenter.MarketplaceIntelligence, error) {
	if err := f.fail("intelligence"); err != nil {
		return nil, err
	}
	return &partnercenter.MarketplaceIntelligence{Category: "Manufacturing", ActiveSolutions: 342}, nil
}

func (f *fakeSource) CompetitiveAnalysis(ctx context.Context, category string) (*partnercenter.CompetitiveAnalysis, error) {
	f.mu.Lock()
	f.categories = append(f.categories, category)
	f.mu.Unlock()
	if err := f.fail("competitive"); err != nil {
		return nil, err
	}
	return &partnercenter.CompetitiveAnalysis{SolutionCategory: category, TopCompetitors: []partnercenter.CompetitorSolution{{CompanyName: "Contoso"}}}, nil
}

func (f *fakeSource) EcosystemUpdates(ctx context.Context) (*partnercenter.EcosystemUpdates, error) {
	if err := f.fail("ecosystem"); err != nil {
		return nil, err
	}
	return &partnercenter.EcosystemUpdates{ReleaseWave: "2025 Wave 1"}, nil
}

func (f *fakeSource) ValidateAppSourceCompliance(ctx context.Context, req partnercenter.ComplianceRequest) (*partnercenter.AppSourceComplianceResult, error) {
	f.mu.Lock()
	f.compliance = req
	f.mu.Unlock()
	if err := f.fail("compliance"); err != nil {
		return nil, err
	}
	return &partnercenter.AppSourceComplianceResult{IsCompliant: true, ComplianceScore: 88}, nil
}

func (f *fakeSource) PricingBenchmarks(ctx context.Context, category string) (*partnercenter.PricingBenchmarks, error) {
	f.mu.Lock()
	f.categories = append(f.categories, category)
	f.mu.Unlock()
	if err := f.fail("pricing"); err != nil {
		return nil, err
	}
	return &partnercenter.PricingBenchmarks{Category: category, AveragePrice: 49.99}, nil
}

func (f *fakeSource) RevenueProjections(ctx context.Context, req partnercenter.RevenueRequest) (*partnercenter.RevenueProjections, error) {
	f.mu.Lock()
	f.revenue = req
	f.mu.Unlock()
	if err := f.fail("revenue"); err != nil {
		return nil, err
	}
	return &partnercenter.RevenueProjections{MarketSegment: req.MarketSegment, PeakAnnualRecurringRevenue: 4.2e6}, nil
}

func newService(source enhance.Source, opts ...enhance.Option) *enhance.Service {
	opts = append([]enhance.Option{enhance.WithClock(func() time.Time { return fixedNow })}, opts...)
	return enhance.New(source, opts...)
}

func baseAnalysis() map[string]any {
	return map[string]any{"industry": "manufacturing"}
}

func transportFailure(endpoint string) error {
	return &partnercenter.RemoteCallError{Endpoint: endpoint, Cause: errors.New("connection failed: dial tcp: connection refused")}
}

func TestEnhanceResearch_AllSucceedIsEnriched(t *testing.T) {
	source := &fakeSource{}
	svc := newService(source)

	result := svc.EnhanceResearch(context.Background(), enhance.ResearchRequest{
		Scope:        "comprehensive",
		BaseAnalysis: baseAnalysis(),
	})

	assert.Equal(t, enhance.OutcomeEnriched, result.Kind)
	assert.False(t, result.Degraded())
	assert.Equal(t, "real-time", result.Freshness)
	assert.Equal(t, 0.95, result.QualityScore)
	assert.Equal(t, fixedNow.UTC(), result.Timestamp)
	assert.NoError(t, result.Cause)

	assert.Equal(t, map[string]any{"industry": "manufacturing"}, result.BaseAnalysis)
	assert.Equal(t, "comprehensive", result.Scope)

	require.NotNil(t, result.MarketIntelligence)
	assert.Equal(t, 342, result.MarketIntelligence.ActiveSolutions)
	require.NotNil(t, result.CompetitiveAnalysis)
	assert.Equal(t, "manufacturing", result.CompetitiveAnalysis.SolutionCategory)
	assert.Equal(t, "Contoso", result.CompetitiveAnalysis.TopCompetitors[0].CompanyName)
	require.NotNil(t, result.EcosystemUpdates)
	assert.Equal(t, "2025 Wave 1", result.EcosystemUpdates.ReleaseWave)

	assert.Equal(t, []string{"manufacturing"}, source.categories)
}

func TestEnhanceResearch_AnyFailureIsDegraded(t *testing.T) {
	for _, failing := range []string{"intelligence", "competitive", "ecosystem"} {
		t.Run(failing, func(t *testing.T) {
			cause := transportFailure(failing)
			svc := newService(&fakeSource{failures: map[string]error{failing: cause}})

			result := svc.EnhanceResearch(context.Background(), enhance.ResearchRequest{BaseAnalysis: baseAnalysis()})

			assert.Equal(t, enhance.OutcomeDegraded, result.Kind)
			assert.True(t, result.Degraded())
			assert.Equal(t, "cached", result.Freshness)
			assert.Equal(t, 0.85, result.QualityScore)
			assert.Equal(t, fixedNow.UTC(), result.Timestamp)

			assert.Equal(t, map[string]any{"industry": "manufacturing"}, result.BaseAnalysis)
			assert.Nil(t, result.MarketIntelligence)
			assert.Nil(t, result.CompetitiveAnalysis)
			assert.Nil(t, result.EcosystemUpdates)

			assert.ErrorIs(t, result.Cause, cause)
			assert.ErrorIs(t, result.Cause, partnercenter.ErrRemoteCall)

			var subErr *enhance.SubFetchError
			require.ErrorAs(t, result.Cause, &subErr)
		})
	}
}

func TestEnhanceResearch_AuthenticationFailureIsDegraded(t *testing.T) {
	authErr := &partnercenter.RemoteCallError{
		Endpoint: "marketplace intelligence",
		Cause:    &identity.AuthenticationError{Scope: "scope", Cause: errors.New("invalid_client")},
	}
	svc := newService(&fakeSource{failures: map[string]error{
		"intelligence": authErr,
		"competitive":  authErr,
		"ecosystem":    authErr,
	}})

	result := svc.EnhanceResearch(context.Background(), enhance.ResearchRequest{BaseAnalysis: baseAnalysis()})

	assert.True(t, result.Degraded())
	assert.ErrorIs(t, result.Cause, identity.ErrAuthentication)
}

func TestEnhanceResearch_CompetitiveTransportErrorScenario(t *testing.T) {
	svc := newService(&fakeSource{failures: map[string]error{"competitive": transportFailure("competitive analysis")}})

	result := svc.EnhanceResearch(context.Background(), enhance.ResearchRequest{BaseAnalysis: baseAnalysis()})

	assert.Equal(t, map[string]any{"industry": "manufacturing"}, result.BaseAnalysis)
	assert.Equal(t, 0.85, result.QualityScore)

	// the serialized result carries no partner center data at all
	payload, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.NotContains(t, decoded, "marketIntelligence")
	assert.NotContains(t, decoded, "competitiveAnalysis")
	assert.NotContains(t, decoded, "ecosystemUpdates")
	assert.Equal(t, "degraded", decoded["outcome"])
	assert.Equal(t, "cached", decoded["dataFreshness"])
}

func TestEnhanceResearch_FailureCancelsRemainingFetches(t *testing.T) {
	source := &blockingSource{fakeSource: fakeSource{failures: map[string]error{"intelligence": transportFailure("intelligence")}}}
	svc := newService(source)

	done := make(chan enhance.ResearchResult, 1)
	go func() {
		done <- svc.EnhanceResearch(context.Background(), enhance.ResearchRequest{BaseAnalysis: baseAnalysis()})
	}()

	select {
	case result := <-done:
		assert.True(t, result.Degraded())
	case <-time.After(5 * time.Second):
		t.Fatal("aggregation did not finish after a sub-fetch failed")
	}
}

// blockingSource never answers competitive analysis or ecosystem updates until
// its context is cancelled.
type blockingSource struct {
	fakeSource
}

func (b *blockingSource) CompetitiveAnalysis(ctx context.Context, _ string) (*partnercenter.CompetitiveAnalysis, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingSource) EcosystemUpdates(ctx context.Context) (*partnercenter.EcosystemUpdates, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestEnhanceSpecification_AllSucceedIsEnriched(t *testing.T) {
	source := &fakeSource{}
	svc := newService(source)

	result := svc.EnhanceSpecification(context.Background(), enhance.SpecificationRequest{
		BaseDocument:        map[string]any{"title": "Shop floor scheduler"},
		SolutionType:        "ISV App",
		IntegrationLevel:    "Deep",
		MarketSegment:       "Discrete",
		EstimatedMarketSize: 120,
	})

	assert.Equal(t, enhance.OutcomeEnriched, result.Kind)
	assert.Equal(t, "real-time", result.Freshness)
	assert.Equal(t, 0.95, result.QualityScore)
	assert.Equal(t, map[string]any{"title": "Shop floor scheduler"}, result.BaseDocument)

	require.NotNil(t, result.ComplianceValidation)
	assert.True(t, result.ComplianceValidation.IsCompliant)
	require.NotNil(t, result.PricingBenchmarks)
	assert.Equal(t, "manufacturing", result.PricingBenchmarks.Category)
	require.NotNil(t, result.RevenueProjections)
	assert.Equal(t, "Discrete", result.RevenueProjections.MarketSegment)

	assert.Equal(t, "ISV App", source.compliance.SolutionType)
	assert.Equal(t, "Deep", source.compliance.IntegrationLevel)
	assert.Equal(t, 120.0, source.revenue.EstimatedMarketSize)
}

func TestEnhanceSpecification_DefaultMarketSize(t *testing.T) {
	t.Run("package default", func(t *testing.T) {
		source := &fakeSource{}
		newService(source).EnhanceSpecification(context.Background(), enhance.SpecificationRequest{MarketSegment: "Process"})
		assert.Equal(t, 50.0, source.revenue.EstimatedMarketSize)
	})

	t.Run("configured default", func(t *testing.T) {
		source := &fakeSource{}
		newService(source, enhance.WithDefaultMarketSize(75)).EnhanceSpecification(context.Background(), enhance.SpecificationRequest{MarketSegment: "Process"})
		assert.Equal(t, 75.0, source.revenue.EstimatedMarketSize)
	})
}

func TestEnhanceSpecification_AnyFailureIsDegraded(t *testing.T) {
	for _, failing := range []string{"compliance", "pricing", "revenue"} {
		t.Run(failing, func(t *testing.T) {
			cause := transportFailure(failing)
			svc := newService(&fakeSource{failures: map[string]error{failing: cause}})

			doc := map[string]any{"title": "Shop floor scheduler"}
			result := svc.EnhanceSpecification(context.Background(), enhance.SpecificationRequest{
				BaseDocument:  doc,
				SolutionType:  "ISV App",
				MarketSegment: "Discrete",
			})

			assert.Equal(t, enhance.OutcomeDegraded, result.Kind)
			assert.Equal(t, "cached", result.Freshness)
			assert.Equal(t, 0.85, result.QualityScore)
			assert.Equal(t, doc, result.BaseDocument)
			assert.Nil(t, result.ComplianceValidation)
			assert.Nil(t, result.PricingBenchmarks)
			assert.Nil(t, result.RevenueProjections)
			assert.ErrorIs(t, result.Cause, cause)
		})
	}
}

func TestWithCategory(t *testing.T) {
	source := &fakeSource{}
	svc := newService(source, enhance.WithCategory("retail"))

	svc.EnhanceResearch(context.Background(), enhance.ResearchRequest{})
	svc.EnhanceSpecification(context.Background(), enhance.SpecificationRequest{})

	assert.Equal(t, []string{"retail", "retail"}, source.categories)
}

func TestEnhance_RecordsSpans(t *testing.T) {
	cases := []struct {
		name     string
		failures map[string]error
		outcome  string
		status   codes.Code
	}{
		{name: "enriched", outcome: "enriched", status: codes.Unset},
		{name: "degraded", failures: map[string]error{"ecosystem": transportFailure("ecosystem")}, outcome: "degraded", status: codes.Error},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			svc := newService(&fakeSource{failures: tc.failures}, enhance.WithTracerProvider(tp))

			svc.EnhanceResearch(context.Background(), enhance.ResearchRequest{Scope: "quick"})

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, "enhance.research", spans[0].Name())
			assert.Equal(t, tc.status, spans[0].Status().Code)

			var outcome string
			for _, attr := range spans[0].Attributes() {
				if attr.Key == "enhance.outcome" {
					outcome = attr.Value.AsString()
				}
			}
			assert.Equal(t, tc.outcome, outcome)
		})
	}
}

func TestKind_Text(t *testing.T) {
	for _, k := range []enhance.Kind{enhance.OutcomeEnriched, enhance.OutcomeDegraded} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var decoded enhance.Kind
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, k, decoded)
	}

	var k enhance.Kind
	assert.ErrorContains(t, k.UnmarshalText([]byte("partial")), `unknown outcome "partial"`)
	assert.Equal(t, "Kind(7)", enhance.Kind(7).String())
}
