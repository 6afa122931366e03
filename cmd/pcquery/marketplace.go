package main

import (
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/spf13/cobra"
)

var intelligenceCmd = &cobra.Command{
	Use:     "intelligence",
	Short:   "Show marketplace intelligence for the configured category",
	Example: `  pcquery intelligence -o json`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		result, err := client.MarketplaceIntelligence(cmd.Context())
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), output, result, intelligenceTable(result))
	},
}

var competitiveCmd = &cobra.Command{
	Use:   "competitive <category>",
	Short: "Show competitive analysis for a solution category",
	Example: `  pcquery competitive manufacturing
  pcquery competitive "supply chain" -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		result, err := client.CompetitiveAnalysis(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), output, result, competitiveTable(result))
	},
}

var complianceRequest partnercenter.ComplianceRequest

var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Validate a solution against AppSource requirements",
	Long: `Submits the solution description for AppSource compliance validation. The
target platform and category are taken from configuration.`,
	Example: `  pcquery compliance --solution-type "ISV App" --integration-level Deep`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		result, err := client.ValidateAppSourceCompliance(cmd.Context(), complianceRequest)
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), output, result, complianceTable(result))
	},
}

func init() {
	complianceCmd.Flags().StringVar(&complianceRequest.SolutionType, "solution-type", "", "Kind of solution being validated")
	complianceCmd.Flags().StringVar(&complianceRequest.IntegrationLevel, "integration-level", "", "Depth of platform integration")

	rootCmd.AddCommand(intelligenceCmd, competitiveCmd, complianceCmd)
}
