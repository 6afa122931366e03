package partnercenter

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// revenueProjectionPeriod is the only projection window the API offers.
const revenueProjectionPeriod = "36months"

// MarketplaceIntelligence returns marketplace intelligence for the configured
// category and platform.
func (c *Client) MarketplaceIntelligence(ctx context.Context) (*MarketplaceIntelligence, error) {
	log := zerolog.Ctx(ctx)
	log.Info().Str("category", c.category).Msg("fetching marketplace intelligence")

	result, err := fetch[MarketplaceIntelligence](ctx, c, endpoint{
		name:   "marketplace intelligence",
		method: http.MethodGet,
		path:   []string{"v1", "analytics", "marketplace", "solutions"},
		query:  url.Values{"category": {c.category}, "platform": {c.platform}},
	}, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to retrieve marketplace intelligence")
		return nil, err
	}

	log.Info().Int("solutions", result.ActiveSolutions).Msg("retrieved marketplace intelligence")
	return result, nil
}

// CompetitiveAnalysis returns the competitive landscape for a solution
// category.
func (c *Client) CompetitiveAnalysis(ctx context.Context, category string) (*CompetitiveAnalysis, error) {
	log := zerolog.Ctx(ctx).With().Str("category", category).Logger()
	log.Info().Msg("fetching competitive analysis")

	result, err := fetch[CompetitiveAnalysis](ctx, c, endpoint{
		name:   "competitive analysis",
		method: http.MethodGet,
		path:   []string{"v1", "analytics", "marketplace", "competitive", url.PathEscape(category)},
	}, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to retrieve competitive analysis")
		return nil, err
	}

	log.Info().Int("competitors", len(result.TopCompetitors)).Msg("retrieved competitive analysis")
	return result, nil
}

// PartnerProgramRequirements returns the current ISV partner program
// requirements.
func (c *Client) PartnerProgramRequirements(ctx context.Context) (*PartnerProgramRequirements, error) {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("fetching partner program requirements")

	result, err := fetch[PartnerProgramRequirements](ctx, c, endpoint{
		name:   "partner program requirements",
		method: http.MethodGet,
		path:   []string{"v1", "partner", "program", "requirements", "isv"},
	}, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to retrieve partner program requirements")
		return nil, err
	}

	log.Info().Str("programLevel", result.ProgramLevel).Msg("retrieved partner program requirements")
	return result, nil
}

// ValidateAppSourceCompliance validates a solution against the AppSource
// requirements. An empty TargetPlatform or Category is filled from the
// client's configuration.
func (c *Client) ValidateAppSourceCompliance(ctx context.Context, req ComplianceRequest) (*AppSourceComplianceResult, error) {
	if req.TargetPlatform == "" {
		req.TargetPlatform = displayName(c.platform)
	}
	if req.Category == "" {
		req.Category = displayName(c.category)
	}

	log := zerolog.Ctx(ctx).With().
		Str("solutionType", req.SolutionType).
		Str("integrationLevel", req.IntegrationLevel).
		Logger()
	log.Info().Msg("validating AppSource compliance")

	result, err := fetch[AppSourceComplianceResult](ctx, c, endpoint{
		name:   "compliance validation",
		method: http.MethodPost,
		path:   []string{"v1", "marketplace", "compliance", "validate"},
	}, req)
	if err != nil {
		log.Error().Err(err).Msg("failed to validate AppSource compliance")
		return nil, err
	}

	log.Info().Bool("compliant", result.IsCompliant).Msg("AppSource compliance validation completed")
	return result, nil
}

// EcosystemUpdates returns the latest platform updates for the configured
// category.
func (c *Client) EcosystemUpdates(ctx context.Context) (*EcosystemUpdates, error) {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("fetching ecosystem updates")

	result, err := fetch[EcosystemUpdates](ctx, c, endpoint{
		name:   "ecosystem updates",
		method: http.MethodGet,
		path:   []string{"v1", "ecosystem", url.PathEscape(c.platform), url.PathEscape(c.category), "updates"},
	}, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to retrieve ecosystem updates")
		return nil, err
	}

	log.Info().
		Int("features", len(result.NewFeatures)).
		Int("apiChanges", len(result.APIChanges)).
		Msg("retrieved ecosystem updates")
	return result, nil
}

// PricingBenchmarks returns market pricing benchmarks for a solution
// category.
func (c *Client) PricingBenchmarks(ctx context.Context, category string) (*PricingBenchmarks, error) {
	log := zerolog.Ctx(ctx).With().Str("category", category).Logger()
	log.Info().Msg("fetching pricing benchmarks")

	result, err := fetch[PricingBenchmarks](ctx, c, endpoint{
		name:   "pricing benchmarks",
		method: http.MethodGet,
		path:   []string{"v1", "analytics", "pricing", "benchmarks", url.PathEscape(category)},
	}, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to retrieve pricing benchmarks")
		return nil, err
	}

	log.Info().Int("tiers", len(result.PricingTiers)).Msg("retrieved pricing benchmarks")
	return result, nil
}

// RevenueProjections returns revenue projections for a market segment. Empty
// Platform, Category and ProjectionPeriod fields are filled with defaults.
func (c *Client) RevenueProjections(ctx context.Context, req RevenueRequest) (*RevenueProjections, error) {
	if req.Platform == "" {
		req.Platform = displayName(c.platform)
	}
	if req.Category == "" {
		req.Category = displayName(c.category)
	}
	if req.ProjectionPeriod == "" {
		req.ProjectionPeriod = revenueProjectionPeriod
	}

	log := zerolog.Ctx(ctx).With().
		Str("marketSegment", req.MarketSegment).
		Float64("marketSize", req.EstimatedMarketSize).
		Logger()
	log.Info().Msg("generating revenue projections")

	result, err := fetch[RevenueProjections](ctx, c, endpoint{
		name:   "revenue projections",
		method: http.MethodPost,
		path:   []string{"v1", "analytics", "revenue", "projections"},
	}, req)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate revenue projections")
		return nil, err
	}

	log.Info().Float64("peakARR", result.PeakAnnualRecurringRevenue).Msg("generated revenue projections")
	return result, nil
}
