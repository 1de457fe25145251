package main

import (
	"log/slog"

	"github.com/couchcryptid/forecast-trigger-etl/internal/adapter/maproom"
	"github.com/couchcryptid/forecast-trigger-etl/internal/config"
	"github.com/couchcryptid/forecast-trigger-etl/internal/observability"
	"github.com/couchcryptid/forecast-trigger-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

// toolkit bundles the wired collaborators every sub-command needs.
type toolkit struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	client   *maproom.Client
	resolver *maproom.CachedResolver
}

// newToolkit loads the config named by --config and wires the shared stack.
func newToolkit(cmd *cobra.Command) (*toolkit, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := maproom.NewClient(maproom.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
	}, cfg.RequestTimeout, metrics, logger)

	return &toolkit{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		client:   client,
		resolver: maproom.NewCachedResolver(client, cfg.RegionCacheSize, metrics),
	}, nil
}

// buildParams maps the loaded config onto the builder's query space.
func (tk *toolkit) buildParams() pipeline.BuildParams {
	return pipeline.BuildParams{
		Maproom:           tk.cfg.Maproom,
		Mode:              tk.cfg.Mode,
		Season:            tk.cfg.Season,
		Predictor:         tk.cfg.Predictor,
		Predictand:        tk.cfg.Predictand,
		Year:              tk.cfg.Year,
		BadYears:          tk.cfg.BadYears,
		IssueMonths:       tk.cfg.IssueMonths,
		Frequencies:       tk.cfg.Frequencies,
		IncludeUpcoming:   tk.cfg.IncludeUpcoming,
		ThresholdProtocol: tk.cfg.ThresholdProtocol,
		NeedValidKeys:     tk.cfg.NeedValidKeys,
		ValidKeys:         tk.cfg.ValidKeys,
	}
}
