package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dynamic360/partnercenter-bridge/internal/enhance"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	baseFile      string
	researchScope string
	specRequest   enhance.SpecificationRequest
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Combine a document with live Partner Center data",
	Long: `Runs the same enhancement as the bridge server. The base document is read
from --base (JSON or YAML, "-" for stdin). When any Partner Center call fails the
document is returned unchanged and the outcome is reported as degraded.`,
}

var enhanceResearchCmd = &cobra.Command{
	Use:     "research",
	Short:   "Enhance a research analysis with marketplace data",
	Example: `  pcquery enhance research --base analysis.yaml --scope comprehensive`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := getEnhancer(cmd)
		if err != nil {
			return err
		}

		base, err := readBaseDocument(baseFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		result := svc.EnhanceResearch(cmd.Context(), enhance.ResearchRequest{
			Scope:        researchScope,
			BaseAnalysis: base,
		})
		warnDegraded(result.Outcome)

		return render(cmd.OutOrStdout(), output, result, researchTable(result))
	},
}

var enhanceSpecCmd = &cobra.Command{
	Use:     "spec",
	Aliases: []string{"specification"},
	Short:   "Enhance a product specification with compliance, pricing and revenue data",
	Example: `  pcquery enhance spec --base spec.json --segment Discrete --solution-type "ISV App"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := getEnhancer(cmd)
		if err != nil {
			return err
		}

		base, err := readBaseDocument(baseFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		req := specRequest
		req.BaseDocument = base

		result := svc.EnhanceSpecification(cmd.Context(), req)
		warnDegraded(result.Outcome)

		return render(cmd.OutOrStdout(), output, result, specificationTable(result))
	},
}

func warnDegraded(o enhance.Outcome) {
	if o.Degraded() {
		log.Warn().Err(o.Cause).Msg("enhancement degraded, base document returned unchanged")
	}
}

// readBaseDocument decodes a JSON or YAML object. An empty path yields an
// empty document.
func readBaseDocument(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return map[string]any{}, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read base document: %w", err)
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse base document %s: %w", path, err)
	}

	return doc, nil
}

func init() {
	enhanceCmd.PersistentFlags().StringVar(&baseFile, "base", "", `Base document file (JSON or YAML, "-" for stdin)`)

	enhanceResearchCmd.Flags().StringVar(&researchScope, "scope", "", "Research scope, passed through to the result")

	enhanceSpecCmd.Flags().StringVar(&specRequest.SolutionType, "solution-type", "", "Kind of solution being specified")
	enhanceSpecCmd.Flags().StringVar(&specRequest.IntegrationLevel, "integration-level", "", "Depth of platform integration")
	enhanceSpecCmd.Flags().StringVar(&specRequest.MarketSegment, "segment", "", "Market segment for revenue projection")
	enhanceSpecCmd.Flags().Float64Var(&specRequest.EstimatedMarketSize, "market-size", 0, "Estimated market size in millions (default from configuration)")

	enhanceCmd.AddCommand(enhanceResearchCmd, enhanceSpecCmd)
	rootCmd.AddCommand(enhanceCmd)
}
