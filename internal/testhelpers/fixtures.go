package testhelpers

// Payloads served by MockPartnerCenterServer.
const (
	IntelligenceFixture = `{
  "category": "Manufacturing",
  "totalMarketSize": 1250000000,
  "activeSolutions": 342,
  "marketTrends": [
    {"trendName": "Predictive maintenance", "growthRate": 0.22, "confidence": 0.87, "timeframe": "2025-2027", "description": "IoT driven maintenance scheduling"}
  ],
  "identifiedGaps": [
    {"gapName": "Shop floor scheduling", "marketSize": 85000000, "difficulty": "Medium", "timeToMarket": 9, "competitionLevel": "Low", "description": "Finite capacity planning for SMB plants"}
  ],
  "customerDemand": {"totalCustomers": 12800, "averageSpend": 18500, "demandScore": 0.78, "growthProjection": 0.15, "topRequests": ["MES integration", "Quality management"]},
  "lastUpdated": "2025-03-01T00:00:00Z"
}`

	CompetitiveFixture = `{
  "solutionCategory": "manufacturing",
  "topCompetitors": [
    {"companyName": "Contoso", "solutionName": "Contoso MES", "marketShare": 0.18, "pricingTier": "Premium", "keyFeatures": ["Scheduling"], "customerRating": 4.3, "strengths": ["Depth"], "weaknesses": ["Price"]}
  ],
  "pricingLandscape": {"averagePrice": 65, "pricingSpread": 40, "dominantModel": "Per user", "priceElasticity": 0.6},
  "opportunities": [
    {"opportunityName": "SMB focus", "description": "Lightweight onboarding", "marketPotential": 42000000, "competitiveDifficulty": "Low", "implementationComplexity": "Medium"}
  ],
  "recommendedPositioning": {"recommendedPosition": "Challenger", "keyDifferentiators": ["Fast setup"], "targetCustomerSegment": "SMB discrete", "messagingStrategy": "Value", "competitiveAdvantages": ["Native Dataverse"]},
  "marketShare": {"totalMarketSize": 1250000000, "topPlayerShare": 0.18, "fragmentationLevel": "High", "growthRate": 0.12, "marketConcentration": "Low"}
}`

	RequirementsFixture = `{
  "programLevel": "Gold",
  "competencyRequirements": [{"competencyName": "Cloud Business Applications", "level": "Gold", "description": "Dynamics 365 delivery", "validationMethod": "Exam", "renewalPeriod": 12}],
  "technicalRequirements": [{"requirementName": "Security review", "description": "Annual penetration test", "mandatory": true, "validationCriteria": ["Report submitted"]}],
  "businessRequirements": [{"requirementName": "Customer references", "description": "Referenceable customers", "threshold": "3", "measurementPeriod": "12 months"}],
  "benefits": [{"benefitName": "Co-sell", "description": "Field co-sell eligibility", "value": "High", "eligibilityLevel": "Gold"}],
  "lastUpdated": "2025-01-15T08:30:00Z"
}`

	ComplianceFixture = `{
  "isCompliant": false,
  "complianceScore": 82.5,
  "validationResults": [{"criteriaName": "Privacy policy", "status": "Failed", "score": 0, "feedback": "Missing link", "priority": "High"}],
  "requiredActions": [{"actionName": "Publish privacy policy", "description": "Add a public privacy policy URL", "priority": "High", "estimatedEffort": "1 day", "deadline": "2025-06-30T00:00:00Z"}],
  "certificationStatus": "Pending",
  "validatedOn": "2025-02-10T12:00:00Z"
}`

	EcosystemFixture = `{
  "newFeatures": [{"featureName": "Copilot for Supply Chain", "description": "Generative planning", "module": "Supply Chain", "availabilityDate": "2025-04-01T00:00:00Z", "impactLevel": "High", "isvOpportunity": "Extend planning scenarios"}],
  "apiChanges": [{"apiName": "Production order API", "changeType": "Deprecated", "description": "v1 retired", "version": "2.0", "deprecationDate": "2026-01-31T00:00:00Z", "migrationGuidance": "Move to v2"}],
  "integrationPatterns": [{"patternName": "Dual write", "description": "Real-time sync", "useCase": "Master data", "implementation": "Dataverse", "benefits": ["Consistency"]}],
  "manufacturingEnhancements": [{"capabilityName": "Mixed mode", "description": "Discrete and process", "industryAlignment": ["Automotive"], "integrationComplexity": "Medium", "businessValue": "High"}],
  "releaseDate": "2025-04-01T00:00:00Z",
  "releaseWave": "2025 Wave 1",
  "impactAssessment": "Moderate"
}`

	PricingFixture = `{
  "category": "manufacturing",
  "pricingTiers": [
    {"tierName": "Standard", "priceRange": {"minimum": 25, "maximum": 75, "currency": "USD", "billingPeriod": "Monthly"}, "features": ["Scheduling"], "marketShare": 0.55},
    {"tierName": "Premium", "priceRange": {"minimum": 75, "maximum": 150, "currency": "USD", "billingPeriod": "Monthly"}, "features": ["Scheduling", "Analytics"], "marketShare": 0.30}
  ],
  "averagePrice": 62.5,
  "pricingModel": "Per user per month",
  "marketPosition": "Mid-market"
}`

	RevenueFixture = `{
  "marketSegment": "Discrete",
  "projectionPeriod": "36months",
  "peakAnnualRecurringRevenue": 4200000,
  "timeToBreakeven": 18,
  "projectedCustomers": 240,
  "averageRevenuePerCustomer": 17500,
  "confidenceLevel": 0.7,
  "scenarios": [{"scenarioName": "Base", "probability": 0.6, "revenueProjection": 4200000, "assumptions": ["5% market capture"]}]
}`
)
