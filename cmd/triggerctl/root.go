package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triggerctl",
		Short: "Forecast trigger-selection analysis against the IRI fbfmaproom API",
		Long: `triggerctl fetches forecast-trigger data from the IRI fbfmaproom2 API,
flattens it into annotated trigger tables across frequency, issue month, and
administrative region, and derives decision-value metrics (EV, Risk, Reward,
RARoP) for analysts.

The analysis run is described by a YAML config file; API credentials are read
from MAPROOM_USERNAME and MAPROOM_PASSWORD.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to the analysis config file")

	cmd.AddCommand(
		newTablesCommand(),
		newRegionsCommand(),
		newDecisionCommand(),
	)
	return cmd
}
