package main

import (
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/spf13/cobra"
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Show partner program requirements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		result, err := client.PartnerProgramRequirements(cmd.Context())
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), output, result, requirementsTable(result))
	},
}

var ecosystemCmd = &cobra.Command{
	Use:   "ecosystem",
	Short: "Show platform ecosystem updates for the configured category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		result, err := client.EcosystemUpdates(cmd.Context())
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), output, result, ecosystemTable(result))
	},
}

var pricingCmd = &cobra.Command{
	Use:     "pricing <category>",
	Short:   "Show pricing benchmarks for a solution category",
	Example: `  pcquery pricing manufacturing`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		result, err := client.PricingBenchmarks(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), output, result, pricingTable(result))
	},
}

var revenueRequest partnercenter.RevenueRequest

var revenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Project revenue for a market segment",
	Long: `Requests revenue projections for a market segment. Platform, category and
projection period default to the configured values when not given.`,
	Example: `  pcquery revenue --segment Discrete --market-size 75`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("market-size") {
			revenueRequest.EstimatedMarketSize = session.cfg.Enhance.DefaultMarketSize
		}

		result, err := client.RevenueProjections(cmd.Context(), revenueRequest)
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), output, result, revenueTable(result))
	},
}

func init() {
	revenueCmd.Flags().StringVar(&revenueRequest.MarketSegment, "segment", "", "Market segment to project")
	revenueCmd.Flags().Float64Var(&revenueRequest.EstimatedMarketSize, "market-size", 0, "Estimated market size in millions (default from configuration)")
	revenueCmd.Flags().StringVar(&revenueRequest.ProjectionPeriod, "period", "", "Projection period, e.g. 36months")

	rootCmd.AddCommand(requirementsCmd, ecosystemCmd, pricingCmd, revenueCmd)
}
