package partnercenter

// normalizer is implemented by every response type, replacing nil collections
// (absent or null in the response) with empty ones.
type normalizer interface {
	normalize()
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (m *MarketplaceIntelligence) normalize() {
	m.MarketTrends = orEmpty(m.MarketTrends)
	m.IdentifiedGaps = orEmpty(m.IdentifiedGaps)
	m.CustomerDemand.TopRequests = orEmpty(m.CustomerDemand.TopRequests)
}

func (a *CompetitiveAnalysis) normalize() {
	a.TopCompetitors = orEmpty(a.TopCompetitors)
	for i := range a.TopCompetitors {
		c := &a.TopCompetitors[i]
		c.KeyFeatures = orEmpty(c.KeyFeatures)
		c.Strengths = orEmpty(c.Strengths)
		c.Weaknesses = orEmpty(c.Weaknesses)
	}
	a.Opportunities = orEmpty(a.Opportunities)
	a.RecommendedPositioning.KeyDifferentiators = orEmpty(a.RecommendedPositioning.KeyDifferentiators)
	a.RecommendedPositioning.CompetitiveAdvantages = orEmpty(a.RecommendedPositioning.CompetitiveAdvantages)
}

func (r *PartnerProgramRequirements) normalize() {
	r.CompetencyRequirements = orEmpty(r.CompetencyRequirements)
	r.TechnicalRequirements = orEmpty(r.TechnicalRequirements)
	for i := range r.TechnicalRequirements {
		r.TechnicalRequirements[i].ValidationCriteria = orEmpty(r.TechnicalRequirements[i].ValidationCriteria)
	}
	r.BusinessRequirements = orEmpty(r.BusinessRequirements)
	r.Benefits = orEmpty(r.Benefits)
}

func (r *AppSourceComplianceResult) normalize() {
	r.ValidationResults = orEmpty(r.ValidationResults)
	r.RequiredActions = orEmpty(r.RequiredActions)
}

func (u *EcosystemUpdates) normalize() {
	u.NewFeatures = orEmpty(u.NewFeatures)
	u.APIChanges = orEmpty(u.APIChanges)
	u.IntegrationPatterns = orEmpty(u.IntegrationPatterns)
	for i := range u.IntegrationPatterns {
		u.IntegrationPatterns[i].Benefits = orEmpty(u.IntegrationPatterns[i].Benefits)
	}
	u.ManufacturingEnhancements = orEmpty(u.ManufacturingEnhancements)
	for i := range u.ManufacturingEnhancements {
		u.ManufacturingEnhancements[i].IndustryAlignment = orEmpty(u.ManufacturingEnhancements[i].IndustryAlignment)
	}
}

func (b *PricingBenchmarks) normalize() {
	b.PricingTiers = orEmpty(b.PricingTiers)
	for i := range b.PricingTiers {
		b.PricingTiers[i].Features = orEmpty(b.PricingTiers[i].Features)
	}
}

func (p *RevenueProjections) normalize() {
	p.Scenarios = orEmpty(p.Scenarios)
	for i := range p.Scenarios {
		p.Scenarios[i].Assumptions = orEmpty(p.Scenarios[i].Assumptions)
	}
}
