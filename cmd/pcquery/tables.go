package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/enhance"
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintfFunc()
	good  = color.New(color.FgGreen).SprintFunc()
	bad   = color.New(color.FgRed).SprintFunc()
)

func intelligenceTable(m *partnercenter.MarketplaceIntelligence) func(table.Writer) {
	return func(t table.Writer) {
		t.SetTitle("%s: %d active solutions, market %.1f", bold(m.Category), m.ActiveSolutions, m.TotalMarketSize)
		t.AppendHeader(table.Row{"Trend", "Growth", "Confidence", "Timeframe"})
		for _, trend := range m.MarketTrends {
			t.AppendRow(table.Row{
				bold(trend.TrendName),
				fmt.Sprintf("%.1f%%", trend.GrowthRate),
				fmt.Sprintf("%.2f", trend.Confidence),
				trend.Timeframe,
			})
		}
		for _, gap := range m.IdentifiedGaps {
			t.AppendFooter(table.Row{
				"gap: " + gap.GapName,
				fmt.Sprintf("%.1f", gap.MarketSize),
				gap.Difficulty,
				faint("%d months", gap.TimeToMarketMonths),
			})
		}
	}
}

func competitiveTable(c *partnercenter.CompetitiveAnalysis) func(table.Writer) {
	return func(t table.Writer) {
		t.SetTitle("%s: average price %.2f (%s)", bold(c.SolutionCategory), c.PricingLandscape.AveragePrice, c.PricingLandscape.DominantModel)
		t.AppendHeader(table.Row{"Company", "Solution", "Share", "Tier", "Rating"})
		for _, comp := range c.TopCompetitors {
			t.AppendRow(table.Row{
				bold(comp.CompanyName),
				truncate(comp.SolutionName, 40),
				fmt.Sprintf("%.1f%%", comp.MarketShare),
				comp.PricingTier,
				fmt.Sprintf("%.1f", comp.CustomerRating),
			})
		}
	}
}

func requirementsTable(r *partnercenter.PartnerProgramRequirements) func(table.Writer) {
	return func(t table.Writer) {
		t.SetTitle("Program level: %s", bold(r.ProgramLevel))
		t.AppendHeader(table.Row{"Kind", "Name", "Detail"})
		for _, c := range r.CompetencyRequirements {
			t.AppendRow(table.Row{"competency", bold(c.CompetencyName), c.Level})
		}
		for _, tr := range r.TechnicalRequirements {
			detail := "optional"
			if tr.Mandatory {
				detail = "mandatory"
			}
			t.AppendRow(table.Row{"technical", bold(tr.RequirementName), detail})
		}
		for _, b := range r.BusinessRequirements {
			t.AppendRow(table.Row{"business", bold(b.RequirementName), b.Threshold})
		}
		for _, b := range r.Benefits {
			t.AppendRow(table.Row{"benefit", b.BenefitName, faint("%s", b.EligibilityLevel)})
		}
	}
}

func complianceTable(c *partnercenter.AppSourceComplianceResult) func(table.Writer) {
	return func(t table.Writer) {
		verdict := bad("not compliant")
		if c.IsCompliant {
			verdict = good("compliant")
		}
		t.SetTitle("%s, score %.1f, %s", verdict, c.ComplianceScore, c.CertificationStatus)
		t.AppendHeader(table.Row{"Criteria", "Status", "Score", "Priority"})
		for _, v := range c.ValidationResults {
			t.AppendRow(table.Row{bold(v.CriteriaName), v.Status, fmt.Sprintf("%.1f", v.Score), v.Priority})
		}
		for _, a := range c.RequiredActions {
			deadline := "-"
			if a.Deadline != nil {
				deadline = a.Deadline.Format(time.DateOnly)
			}
			t.AppendFooter(table.Row{"action: " + a.ActionName, a.EstimatedEffort, deadline, a.Priority})
		}
	}
}

func ecosystemTable(e *partnercenter.EcosystemUpdates) func(table.Writer) {
	return func(t table.Writer) {
		t.SetTitle("%s (%s)", bold(e.ReleaseWave), e.ReleaseDate.Format(time.DateOnly))
		t.AppendHeader(table.Row{"Kind", "Name", "Detail"})
		for _, f := range e.NewFeatures {
			t.AppendRow(table.Row{"feature", bold(f.FeatureName), f.Module})
		}
		for _, a := range e.APIChanges {
			t.AppendRow(table.Row{"api", bold(a.APIName), fmt.Sprintf("%s %s", a.ChangeType, a.Version)})
		}
		for _, p := range e.IntegrationPatterns {
			t.AppendRow(table.Row{"pattern", p.PatternName, faint("%s", truncate(p.UseCase, 40))})
		}
		for _, m := range e.ManufacturingEnhancements {
			t.AppendRow(table.Row{"capability", m.CapabilityName, strings.Join(m.IndustryAlignment, ", ")})
		}
	}
}

func pricingTable(p *partnercenter.PricingBenchmarks) func(table.Writer) {
	return func(t table.Writer) {
		t.SetTitle("%s: average %.2f, %s", bold(p.Category), p.AveragePrice, p.PricingModel)
		t.AppendHeader(table.Row{"Tier", "Range", "Billing", "Share"})
		for _, tier := range p.PricingTiers {
			t.AppendRow(table.Row{
				bold(tier.TierName),
				fmt.Sprintf("%.2f - %.2f %s", tier.PriceRange.Minimum, tier.PriceRange.Maximum, tier.PriceRange.Currency),
				tier.PriceRange.BillingPeriod,
				fmt.Sprintf("%.1f%%", tier.MarketShare),
			})
		}
	}
}

func revenueTable(r *partnercenter.RevenueProjections) func(table.Writer) {
	return func(t table.Writer) {
		t.SetTitle("%s over %s: peak ARR %.0f, breakeven %d months",
			bold(r.MarketSegment), r.ProjectionPeriod, r.PeakAnnualRecurringRevenue, r.TimeToBreakevenMonths)
		t.AppendHeader(table.Row{"Scenario", "Probability", "Revenue"})
		for _, s := range r.Scenarios {
			t.AppendRow(table.Row{bold(s.ScenarioName), fmt.Sprintf("%.2f", s.Probability), fmt.Sprintf("%.0f", s.RevenueProjection)})
		}
	}
}

func outcomeRows(t table.Writer, o enhance.Outcome) {
	kind := good(o.Kind.String())
	if o.Degraded() {
		kind = bad(o.Kind.String())
	}
	t.AppendRow(table.Row{"outcome", kind})
	t.AppendRow(table.Row{"freshness", fmt.Sprintf("%s, quality %.2f", o.Freshness, o.QualityScore)})
	t.AppendRow(table.Row{"timestamp", o.Timestamp.Format(time.RFC3339)})
	t.AppendSeparator()
}

func researchTable(r enhance.ResearchResult) func(table.Writer) {
	return func(t table.Writer) {
		t.AppendHeader(table.Row{"Section", "Summary"})
		outcomeRows(t, r.Outcome)
		if r.MarketIntelligence != nil {
			t.AppendRow(table.Row{"market intelligence", fmt.Sprintf("%d active solutions, %d trends", r.MarketIntelligence.ActiveSolutions, len(r.MarketIntelligence.MarketTrends))})
		}
		if r.CompetitiveAnalysis != nil {
			t.AppendRow(table.Row{"competitive analysis", fmt.Sprintf("%d competitors", len(r.CompetitiveAnalysis.TopCompetitors))})
		}
		if r.EcosystemUpdates != nil {
			t.AppendRow(table.Row{"ecosystem updates", fmt.Sprintf("%s, %d features", r.EcosystemUpdates.ReleaseWave, len(r.EcosystemUpdates.NewFeatures))})
		}
		if r.Degraded() {
			t.AppendRow(table.Row{"cause", faint("%v", r.Cause)})
		}
	}
}

func specificationTable(r enhance.SpecificationResult) func(table.Writer) {
	return func(t table.Writer) {
		t.AppendHeader(table.Row{"Section", "Summary"})
		outcomeRows(t, r.Outcome)
		if r.ComplianceValidation != nil {
			t.AppendRow(table.Row{"compliance", fmt.Sprintf("score %.1f, %d required actions", r.ComplianceValidation.ComplianceScore, len(r.ComplianceValidation.RequiredActions))})
		}
		if r.PricingBenchmarks != nil {
			t.AppendRow(table.Row{"pricing", fmt.Sprintf("average %.2f, %d tiers", r.PricingBenchmarks.AveragePrice, len(r.PricingBenchmarks.PricingTiers))})
		}
		if r.RevenueProjections != nil {
			t.AppendRow(table.Row{"revenue", fmt.Sprintf("peak ARR %.0f", r.RevenueProjections.PeakAnnualRecurringRevenue)})
		}
		if r.Degraded() {
			t.AppendRow(table.Row{"cause", faint("%v", r.Cause)})
		}
	}
}
