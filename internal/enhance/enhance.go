// Package enhance combines several Partner Center results with a caller's
// existing analysis. Enrichment is all or nothing: when any constituent call
// fails the caller gets its own payload back, marked as degraded.
package enhance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/audit"
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCategory   = "manufacturing"
	DefaultMarketSize = 50.0

	instrumentationName = "github.com/dynamic360/partnercenter-bridge/internal/enhance"
)

var (
	metricsOnce sync.Once
	outcomes    metric.Int64Counter
)

func initMetrics() {
	metricsOnce.Do(func() {
		var err error
		outcomes, err = otel.Meter(instrumentationName).Int64Counter(
			"enhance.outcomes",
			metric.WithDescription("Enhancement results by operation and outcome"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}

// Source is the set of Partner Center calls the aggregations draw on.
// *partnercenter.Client satisfies it.
type Source interface {
	MarketplaceIntelligence(ctx context.Context) (*partnercenter.MarketplaceIntelligence, error)
	CompetitiveAnalysis(ctx context.Context, category string) (*partnercenter.CompetitiveAnalysis, error)
	EcosystemUpdates(ctx context.Context) (*partnercenter.EcosystemUpdates, error)

	ValidateAppSourceCompliance(ctx context.Context, req partnercenter.ComplianceRequest) (*partnercenter.AppSourceComplianceResult, error)
	PricingBenchmarks(ctx context.Context, category string) (*partnercenter.PricingBenchmarks, error)
	RevenueProjections(ctx context.Context, req partnercenter.RevenueRequest) (*partnercenter.RevenueProjections, error)
}

// Service runs enhancement aggregations. It holds no per-call state.
type Service struct {
	source            Source
	category          string
	defaultMarketSize float64
	now               func() time.Time
	tracer            trace.Tracer
}

type Option func(*Service)

// WithCategory sets the solution category used for competitive analysis and
// pricing benchmarks.
func WithCategory(category string) Option {
	return func(s *Service) {
		s.category = category
	}
}

// WithDefaultMarketSize sets the estimate used for revenue projections when
// a request does not carry one.
func WithDefaultMarketSize(size float64) Option {
	return func(s *Service) {
		s.defaultMarketSize = size
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(instrumentationName)
	}
}

func New(source Source, opts ...Option) *Service {
	initMetrics()

	s := &Service{
		source:            source,
		category:          DefaultCategory,
		defaultMarketSize: DefaultMarketSize,
		now:               time.Now,
		tracer:            otel.Tracer(instrumentationName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ResearchRequest carries an existing market analysis to be enriched. Scope
// is recorded but does not change which data is fetched.
type ResearchRequest struct {
	Scope        string         `json:"scope"`
	BaseAnalysis map[string]any `json:"baseAnalysis"`
}

// ResearchResult is BaseAnalysis plus, when enriched, the three Partner
// Center results it was combined with.
type ResearchResult struct {
	Scope               string                                `json:"scope,omitempty"`
	BaseAnalysis        map[string]any                        `json:"baseAnalysis"`
	MarketIntelligence  *partnercenter.MarketplaceIntelligence `json:"marketIntelligence,omitempty"`
	CompetitiveAnalysis *partnercenter.CompetitiveAnalysis     `json:"competitiveAnalysis,omitempty"`
	EcosystemUpdates    *partnercenter.EcosystemUpdates        `json:"ecosystemUpdates,omitempty"`
	Outcome
}

// SpecificationRequest carries an existing product specification to be
// enriched. A zero EstimatedMarketSize selects the configured default.
type SpecificationRequest struct {
	BaseDocument        map[string]any `json:"baseDocument"`
	SolutionType        string         `json:"solutionType"`
	IntegrationLevel    string         `json:"integrationLevel"`
	MarketSegment       string         `json:"marketSegment"`
	EstimatedMarketSize float64        `json:"estimatedMarketSize,omitempty"`
}

// SpecificationResult is BaseDocument plus, when enriched, the compliance,
// pricing and revenue results it was combined with.
type SpecificationResult struct {
	BaseDocument         map[string]any                           `json:"baseDocument"`
	ComplianceValidation *partnercenter.AppSourceComplianceResult `json:"complianceValidation,omitempty"`
	PricingBenchmarks    *partnercenter.PricingBenchmarks         `json:"pricingBenchmarks,omitempty"`
	RevenueProjections   *partnercenter.RevenueProjections        `json:"revenueProjections,omitempty"`
	Outcome
}

// EnhanceResearch combines req.BaseAnalysis with marketplace intelligence,
// competitive analysis and ecosystem updates. It always returns a result.
func (s *Service) EnhanceResearch(ctx context.Context, req ResearchRequest) ResearchResult {
	ctx, span := s.tracer.Start(ctx, "enhance.research", trace.WithAttributes(
		attribute.String("enhance.scope", req.Scope),
		attribute.String("enhance.category", s.category),
	))
	defer span.End()

	log := zerolog.Ctx(ctx).With().Str("operation", "research").Str("scope", req.Scope).Logger()
	log.Info().Msg("enhancing research with partner center data")

	var (
		intelligence *partnercenter.MarketplaceIntelligence
		competitive  *partnercenter.CompetitiveAnalysis
		ecosystem    *partnercenter.EcosystemUpdates
	)

	err := gather(ctx,
		subFetch{"marketplace intelligence", func(ctx context.Context) (err error) {
			intelligence, err = s.source.MarketplaceIntelligence(ctx)
			return err
		}},
		subFetch{"competitive analysis", func(ctx context.Context) (err error) {
			competitive, err = s.source.CompetitiveAnalysis(ctx, s.category)
			return err
		}},
		subFetch{"ecosystem updates", func(ctx context.Context) (err error) {
			ecosystem, err = s.source.EcosystemUpdates(ctx)
			return err
		}},
	)

	result := ResearchResult{
		Scope:        req.Scope,
		BaseAnalysis: req.BaseAnalysis,
	}

	if err != nil {
		result.Outcome = degraded(s.now(), err)
		s.record(ctx, span, log, "research", result.Outcome)
		return result
	}

	result.MarketIntelligence = intelligence
	result.CompetitiveAnalysis = competitive
	result.EcosystemUpdates = ecosystem
	result.Outcome = enriched(s.now())
	s.record(ctx, span, log, "research", result.Outcome)

	return result
}

// EnhanceSpecification combines req.BaseDocument with compliance validation,
// pricing benchmarks and revenue projections. It always returns a result.
func (s *Service) EnhanceSpecification(ctx context.Context, req SpecificationRequest) SpecificationResult {
	marketSize := req.EstimatedMarketSize
	if marketSize == 0 {
		marketSize = s.defaultMarketSize
	}

	ctx, span := s.tracer.Start(ctx, "enhance.specification", trace.WithAttributes(
		attribute.String("enhance.solution_type", req.SolutionType),
		attribute.String("enhance.market_segment", req.MarketSegment),
		attribute.Float64("enhance.market_size", marketSize),
	))
	defer span.End()

	log := zerolog.Ctx(ctx).With().
		Str("operation", "specification").
		Str("solutionType", req.SolutionType).
		Str("marketSegment", req.MarketSegment).
		Logger()
	log.Info().Msg("enhancing specification with partner center data")

	var (
		compliance *partnercenter.AppSourceComplianceResult
		pricing    *partnercenter.PricingBenchmarks
		revenue    *partnercenter.RevenueProjections
	)

	err := gather(ctx,
		subFetch{"compliance validation", func(ctx context.Context) (err error) {
			compliance, err = s.source.ValidateAppSourceCompliance(ctx, partnercenter.ComplianceRequest{
				SolutionType:     req.SolutionType,
				IntegrationLevel: req.IntegrationLevel,
			})
			return err
		}},
		subFetch{"pricing benchmarks", func(ctx context.Context) (err error) {
			pricing, err = s.source.PricingBenchmarks(ctx, s.category)
			return err
		}},
		subFetch{"revenue projections", func(ctx context.Context) (err error) {
			revenue, err = s.source.RevenueProjections(ctx, partnercenter.RevenueRequest{
				MarketSegment:       req.MarketSegment,
				EstimatedMarketSize: marketSize,
			})
			return err
		}},
	)

	result := SpecificationResult{BaseDocument: req.BaseDocument}

	if err != nil {
		result.Outcome = degraded(s.now(), err)
		s.record(ctx, span, log, "specification", result.Outcome)
		return result
	}

	result.ComplianceValidation = compliance
	result.PricingBenchmarks = pricing
	result.RevenueProjections = revenue
	result.Outcome = enriched(s.now())
	s.record(ctx, span, log, "specification", result.Outcome)

	return result
}

func (s *Service) record(ctx context.Context, span trace.Span, log zerolog.Logger, operation string, o Outcome) {
	span.SetAttributes(
		attribute.String("enhance.outcome", o.Kind.String()),
		attribute.Float64("enhance.quality_score", o.QualityScore),
	)

	cause := ""
	if o.Cause != nil {
		cause = o.Cause.Error()
	}
	audit.Log(ctx).SetEnhancement(operation, o.Kind.String(), cause)

	if o.Degraded() {
		span.RecordError(o.Cause)
		span.SetStatus(codes.Error, "degraded")
		log.Warn().Err(o.Cause).Msg("partner center enhancement failed, using base data")
	} else {
		log.Info().Float64("qualityScore", o.QualityScore).Msg("partner center enhancement completed")
	}

	if outcomes != nil {
		outcomes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("kind", o.Kind.String()),
		))
	}
}

type subFetch struct {
	name string
	run  func(context.Context) error
}

// SubFetchError names the constituent call that caused a degraded result.
type SubFetchError struct {
	Name  string
	Cause error
}

func (e *SubFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Cause)
}

func (e *SubFetchError) Unwrap() error {
	return e.Cause
}

// gather runs every fetch concurrently. The first failure cancels the
// context shared by the rest and is returned once all have finished.
func gather(ctx context.Context, fetches ...subFetch) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, f := range fetches {
		g.Go(func() error {
			if err := f.run(ctx); err != nil {
				return &SubFetchError{Name: f.name, Cause: err}
			}
			return nil
		})
	}

	return g.Wait()
}
