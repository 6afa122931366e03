package partnercenter

import "time"

// The types in this file mirror the Partner Center analytics contract field
// for field. Collections are never nil once a response has been decoded.

type MarketplaceIntelligence struct {
	Category        string             `json:"category"`
	TotalMarketSize float64            `json:"totalMarketSize"`
	ActiveSolutions int                `json:"activeSolutions"`
	MarketTrends    []TrendData        `json:"marketTrends"`
	IdentifiedGaps  []OpportunityGap   `json:"identifiedGaps"`
	CustomerDemand  CustomerDemandData `json:"customerDemand"`
	LastUpdated     time.Time          `json:"lastUpdated"`
}

type TrendData struct {
	TrendName   string  `json:"trendName"`
	GrowthRate  float64 `json:"growthRate"`
	Confidence  float64 `json:"confidence"`
	Timeframe   string  `json:"timeframe"`
	Description string  `json:"description"`
}

type OpportunityGap struct {
	GapName            string  `json:"gapName"`
	MarketSize         float64 `json:"marketSize"`
	Difficulty         string  `json:"difficulty"`
	TimeToMarketMonths int     `json:"timeToMarket"`
	CompetitionLevel   string  `json:"competitionLevel"`
	Description        string  `json:"description"`
}

type CustomerDemandData struct {
	TotalCustomers   int      `json:"totalCustomers"`
	AverageSpend     float64  `json:"averageSpend"`
	DemandScore      float64  `json:"demandScore"`
	GrowthProjection float64  `json:"growthProjection"`
	TopRequests      []string `json:"topRequests"`
}

type CompetitiveAnalysis struct {
	SolutionCategory       string                       `json:"solutionCategory"`
	TopCompetitors         []CompetitorSolution         `json:"topCompetitors"`
	PricingLandscape       PricingAnalysis              `json:"pricingLandscape"`
	Opportunities          []DifferentiationOpportunity `json:"opportunities"`
	RecommendedPositioning MarketPositioning            `json:"recommendedPositioning"`
	MarketShare            MarketShareData              `json:"marketShare"`
}

type CompetitorSolution struct {
	CompanyName    string   `json:"companyName"`
	SolutionName   string   `json:"solutionName"`
	MarketShare    float64  `json:"marketShare"`
	PricingTier    string   `json:"pricingTier"`
	KeyFeatures    []string `json:"keyFeatures"`
	CustomerRating float64  `json:"customerRating"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
}

type MarketPositioning struct {
	RecommendedPosition   string   `json:"recommendedPosition"`
	KeyDifferentiators    []string `json:"keyDifferentiators"`
	TargetCustomerSegment string   `json:"targetCustomerSegment"`
	MessagingStrategy     string   `json:"messagingStrategy"`
	CompetitiveAdvantages []string `json:"competitiveAdvantages"`
}

type MarketShareData struct {
	TotalMarketSize     float64 `json:"totalMarketSize"`
	TopPlayerShare      float64 `json:"topPlayerShare"`
	FragmentationLevel  string  `json:"fragmentationLevel"`
	GrowthRate          float64 `json:"growthRate"`
	MarketConcentration string  `json:"marketConcentration"`
}

type PricingAnalysis struct {
	AveragePrice    float64 `json:"averagePrice"`
	PricingSpread   float64 `json:"pricingSpread"`
	DominantModel   string  `json:"dominantModel"`
	PriceElasticity float64 `json:"priceElasticity"`
}

type DifferentiationOpportunity struct {
	OpportunityName          string  `json:"opportunityName"`
	Description              string  `json:"description"`
	MarketPotential          float64 `json:"marketPotential"`
	CompetitiveDifficulty    string  `json:"competitiveDifficulty"`
	ImplementationComplexity string  `json:"implementationComplexity"`
}

type PartnerProgramRequirements struct {
	ProgramLevel           string                  `json:"programLevel"`
	CompetencyRequirements []CompetencyRequirement `json:"competencyRequirements"`
	TechnicalRequirements  []TechnicalRequirement  `json:"technicalRequirements"`
	BusinessRequirements   []BusinessRequirement   `json:"businessRequirements"`
	Benefits               []PartnerBenefit        `json:"benefits"`
	LastUpdated            time.Time               `json:"lastUpdated"`
}

type CompetencyRequirement struct {
	CompetencyName      string `json:"competencyName"`
	Level               string `json:"level"`
	Description         string `json:"description"`
	ValidationMethod    string `json:"validationMethod"`
	RenewalPeriodMonths int    `json:"renewalPeriod"`
}

type TechnicalRequirement struct {
	RequirementName    string   `json:"requirementName"`
	Description        string   `json:"description"`
	Mandatory          bool     `json:"mandatory"`
	ValidationCriteria []string `json:"validationCriteria"`
}

type BusinessRequirement struct {
	RequirementName   string `json:"requirementName"`
	Description       string `json:"description"`
	Threshold         string `json:"threshold"`
	MeasurementPeriod string `json:"measurementPeriod"`
}

type PartnerBenefit struct {
	BenefitName      string `json:"benefitName"`
	Description      string `json:"description"`
	Value            string `json:"value"`
	EligibilityLevel string `json:"eligibilityLevel"`
}

type AppSourceComplianceResult struct {
	IsCompliant         bool               `json:"isCompliant"`
	ComplianceScore     float64            `json:"complianceScore"`
	ValidationResults   []ValidationResult `json:"validationResults"`
	RequiredActions     []RequiredAction   `json:"requiredActions"`
	CertificationStatus string             `json:"certificationStatus"`
	ValidatedOn         time.Time          `json:"validatedOn"`
}

type ValidationResult struct {
	CriteriaName string  `json:"criteriaName"`
	Status       string  `json:"status"`
	Score        float64 `json:"score"`
	Feedback     string  `json:"feedback"`
	Priority     string  `json:"priority"`
}

type RequiredAction struct {
	ActionName      string     `json:"actionName"`
	Description     string     `json:"description"`
	Priority        string     `json:"priority"`
	EstimatedEffort string     `json:"estimatedEffort"`
	Deadline        *time.Time `json:"deadline"`
}

type EcosystemUpdates struct {
	NewFeatures               []FeatureUpdate           `json:"newFeatures"`
	APIChanges                []APIUpdate               `json:"apiChanges"`
	IntegrationPatterns       []IntegrationPattern      `json:"integrationPatterns"`
	ManufacturingEnhancements []ManufacturingCapability `json:"manufacturingEnhancements"`
	ReleaseDate               time.Time                 `json:"releaseDate"`
	ReleaseWave               string                    `json:"releaseWave"`
	ImpactAssessment          string                    `json:"impactAssessment"`
}

type FeatureUpdate struct {
	FeatureName      string    `json:"featureName"`
	Description      string    `json:"description"`
	Module           string    `json:"module"`
	AvailabilityDate time.Time `json:"availabilityDate"`
	ImpactLevel      string    `json:"impactLevel"`
	ISVOpportunity   string    `json:"isvOpportunity"`
}

type APIUpdate struct {
	APIName           string     `json:"apiName"`
	ChangeType        string     `json:"changeType"`
	Description       string     `json:"description"`
	Version           string     `json:"version"`
	DeprecationDate   *time.Time `json:"deprecationDate"`
	MigrationGuidance string     `json:"migrationGuidance"`
}

type IntegrationPattern struct {
	PatternName    string   `json:"patternName"`
	Description    string   `json:"description"`
	UseCase        string   `json:"useCase"`
	Implementation string   `json:"implementation"`
	Benefits       []string `json:"benefits"`
}

type ManufacturingCapability struct {
	CapabilityName        string   `json:"capabilityName"`
	Description           string   `json:"description"`
	IndustryAlignment     []string `json:"industryAlignment"`
	IntegrationComplexity string   `json:"integrationComplexity"`
	BusinessValue         string   `json:"businessValue"`
}

type PricingBenchmarks struct {
	Category       string        `json:"category"`
	PricingTiers   []PricingTier `json:"pricingTiers"`
	AveragePrice   float64       `json:"averagePrice"`
	PricingModel   string        `json:"pricingModel"`
	MarketPosition string        `json:"marketPosition"`
}

type PricingTier struct {
	TierName    string     `json:"tierName"`
	PriceRange  PriceRange `json:"priceRange"`
	Features    []string   `json:"features"`
	MarketShare float64    `json:"marketShare"`
}

type PriceRange struct {
	Minimum       float64 `json:"minimum"`
	Maximum       float64 `json:"maximum"`
	Currency      string  `json:"currency"`
	BillingPeriod string  `json:"billingPeriod"`
}

type RevenueProjections struct {
	MarketSegment              string            `json:"marketSegment"`
	ProjectionPeriod           string            `json:"projectionPeriod"`
	PeakAnnualRecurringRevenue float64           `json:"peakAnnualRecurringRevenue"`
	TimeToBreakevenMonths      int               `json:"timeToBreakeven"`
	ProjectedCustomers         int               `json:"projectedCustomers"`
	AverageRevenuePerCustomer  float64           `json:"averageRevenuePerCustomer"`
	ConfidenceLevel            float64           `json:"confidenceLevel"`
	Scenarios                  []RevenueScenario `json:"scenarios"`
}

type RevenueScenario struct {
	ScenarioName      string   `json:"scenarioName"`
	Probability       float64  `json:"probability"`
	RevenueProjection float64  `json:"revenueProjection"`
	Assumptions       []string `json:"assumptions"`
}

// ComplianceRequest is the body of a compliance validation call.
type ComplianceRequest struct {
	SolutionType     string `json:"SolutionType"`
	IntegrationLevel string `json:"IntegrationLevel"`
	TargetPlatform   string `json:"TargetPlatform"`
	Category         string `json:"Category"`
}

// RevenueRequest is the body of a revenue projection call.
type RevenueRequest struct {
	MarketSegment       string  `json:"MarketSegment"`
	EstimatedMarketSize float64 `json:"EstimatedMarketSize"`
	Platform            string  `json:"Platform"`
	Category            string  `json:"Category"`
	ProjectionPeriod    string  `json:"ProjectionPeriod"`
}
