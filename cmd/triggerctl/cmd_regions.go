package main

import (
	"encoding/json"
	"os"

	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	"github.com/spf13/cobra"
)

func newRegionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List administrative regions for the configured maproom",
		Long: `Resolve the key/label pairs for an administrative level of the configured
maproom. Level 0 returns all regions; higher levels honor the config's
need_valid_keys whitelist.`,
		RunE: runRegions,
	}
	cmd.Flags().Int("level", -1, "Administrative level to resolve (default: the config's mode)")
	return cmd
}

func runRegions(cmd *cobra.Command, _ []string) error {
	tk, err := newToolkit(cmd)
	if err != nil {
		return err
	}

	level, err := cmd.Flags().GetInt("level")
	if err != nil {
		return err
	}
	if level < 0 {
		level = tk.cfg.Mode
	}

	regions, err := tk.resolver.Regions(cmd.Context(), domain.RegionsParams{
		Maproom:       tk.cfg.Maproom,
		Level:         level,
		NeedValidKeys: tk.cfg.NeedValidKeys,
		ValidKeys:     tk.cfg.ValidKeys,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(regions)
}
