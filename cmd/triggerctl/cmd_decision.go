package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	"github.com/couchcryptid/forecast-trigger-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func newDecisionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decision",
		Short: "Compute decision-value metrics (EV, Risk, Reward, RARoP) per risk tolerance",
		Long: `Build the configured trigger tables, then sweep the config's risk
tolerances, computing expected value, normalized EV, risk, reward, and the
risk-adjusted return on prediction for every record at each tolerance.

Results are written to stdout as one JSON document per risk tolerance.`,
		RunE: runDecision,
	}
}

// decisionSweep is the output document for one risk-tolerance value.
type decisionSweep struct {
	RiskTolerance float64                 `json:"risk_tolerance"`
	Records       []domain.DecisionRecord `json:"records"`
}

func runDecision(cmd *cobra.Command, _ []string) error {
	tk, err := newToolkit(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := pipeline.New(tk.client, tk.resolver, nil, tk.logger, tk.metrics)
	collection, err := builder.Build(ctx, tk.buildParams())
	if err != nil {
		return err
	}

	records := flattenCollection(collection)
	coeffs := domain.DecisionCoefficients{
		ValueTruePositive: tk.cfg.Decision.ValueTruePositive,
		CostFalsePositive: tk.cfg.Decision.CostFalsePositive,
		ValueTrueNegative: tk.cfg.Decision.ValueTrueNegative,
		CostFalseNegative: tk.cfg.Decision.CostFalseNegative,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for _, rt := range tk.cfg.Decision.RiskTolerances {
		out, err := domain.DecisionValues(records, coeffs, rt)
		if err != nil {
			return err
		}
		if err := enc.Encode(decisionSweep{RiskTolerance: rt, Records: out}); err != nil {
			return err
		}
	}
	return nil
}

// flattenCollection concatenates every table's records in deterministic
// table-name order, so EV normalization spans the whole batch.
func flattenCollection(collection domain.TableCollection) []domain.TriggerRecord {
	names := make([]string, 0, len(collection.Tables))
	byName := make(map[string]domain.TriggerTable, len(collection.Tables))
	for _, table := range collection.Tables {
		names = append(names, table.Name)
		byName[table.Name] = table
	}
	sort.Strings(names)

	var records []domain.TriggerRecord
	for _, name := range names {
		records = append(records, byName[name].Records...)
	}
	return records
}
