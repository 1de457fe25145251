// Package pipeline orchestrates the fetch-flatten-annotate loop that turns
// maproom queries into trigger tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	"github.com/couchcryptid/forecast-trigger-etl/internal/observability"
)

// Fetcher retrieves and flattens one export payload and renders the
// design-tool link for a query.
type Fetcher interface {
	FetchExport(ctx context.Context, p domain.ExportParams) (domain.ExportTable, error)
	DesignToolURL(p domain.ExportParams) string
}

// Resolver resolves the administrative regions for a maproom level.
type Resolver interface {
	Regions(ctx context.Context, p domain.RegionsParams) ([]domain.AdminRegion, error)
}

// Loader publishes a built trigger table to a downstream sink.
type Loader interface {
	PublishTable(ctx context.Context, adminName string, table domain.TriggerTable) error
}

// BuildParams is the full query space for one build: the cartesian product of
// frequencies × issue months × resolved regions.
type BuildParams struct {
	Maproom           string
	Mode              int
	Season            string
	Predictor         string
	Predictand        string
	Year              int
	BadYears          []int
	IssueMonths       []int
	Frequencies       []int
	IncludeUpcoming   bool
	ThresholdProtocol float64
	NeedValidKeys     bool
	ValidKeys         []string
}

// Builder produces a keyed collection of annotated trigger tables. Calls are
// strictly sequential; the accumulating collection is never shared.
type Builder struct {
	fetcher  Fetcher
	resolver Resolver
	loader   Loader // nil disables publishing
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Builder. Pass a nil loader to keep tables in memory only.
func New(f Fetcher, r Resolver, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		fetcher:  f,
		resolver: r,
		loader:   l,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once at least one table has been built,
// or an error describing why the builder is not yet ready.
func (b *Builder) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("builder has not produced any tables yet")
	}
	return nil
}

// Build resolves the region set once, then walks frequency × issue month ×
// region, fetching and annotating one table per combination. A failed region
// resolution aborts the build; a failed export is recorded as an empty table
// so one flaky combination cannot sink a long run.
func (b *Builder) Build(ctx context.Context, p BuildParams) (domain.TableCollection, error) {
	start := time.Now()
	b.metrics.BuildRunning.Set(1)
	defer b.metrics.BuildRunning.Set(0)

	regions, err := b.resolver.Regions(ctx, domain.RegionsParams{
		Maproom:       p.Maproom,
		Level:         p.Mode,
		NeedValidKeys: p.NeedValidKeys,
		ValidKeys:     p.ValidKeys,
	})
	if err != nil {
		return domain.TableCollection{}, fmt.Errorf("resolve regions for %s level %d: %w", p.Maproom, p.Mode, err)
	}

	collection := domain.TableCollection{
		AdminName: domain.AdminTableName(p.Mode),
		Tables:    make(map[domain.TableKey]domain.TriggerTable, len(p.Frequencies)*len(p.IssueMonths)*len(regions)),
	}

	b.logger.Info("table build started",
		"maproom", p.Maproom,
		"mode", p.Mode,
		"regions", len(regions),
		"frequencies", len(p.Frequencies),
		"issue_months", len(p.IssueMonths),
	)

	for _, freq := range p.Frequencies {
		for _, month := range p.IssueMonths {
			for _, region := range regions {
				if ctx.Err() != nil {
					return collection, ctx.Err()
				}

				table := b.buildOne(ctx, p, freq, month, region)
				collection.Tables[table.Key] = table

				b.metrics.TablesBuilt.Inc()
				b.metrics.RecordsBuilt.Add(float64(len(table.Records)))
				b.ready.Store(true)

				if err := b.publish(ctx, collection.AdminName, table); err != nil {
					return collection, err
				}
			}
		}
	}

	b.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	b.logger.Info("table build finished",
		"tables", len(collection.Tables),
		"duration", time.Since(start),
	)
	return collection, nil
}

// buildOne fetches and annotates a single (frequency, month, region) table.
func (b *Builder) buildOne(ctx context.Context, p BuildParams, freq, month int, region domain.AdminRegion) domain.TriggerTable {
	key := domain.TableKey{
		Frequency:  freq,
		Mode:       p.Mode,
		IssueMonth: month,
		RegionKey:  region.Key,
	}

	exportParams := domain.ExportParams{
		Maproom:         p.Maproom,
		Mode:            p.Mode,
		Season:          p.Season,
		Predictor:       p.Predictor,
		Predictand:      p.Predictand,
		Regions:         []string{region.Key},
		Year:            p.Year,
		IssueMonth0:     month,
		Frequency:       freq,
		IncludeUpcoming: p.IncludeUpcoming,
	}

	export, err := b.fetcher.FetchExport(ctx, exportParams)
	if err != nil {
		b.logger.Warn("export fetch failed, storing empty table",
			"table", key.TableName(),
			"region", region.Label,
			"error", err,
		)
		return domain.NewTriggerTable(key, nil)
	}

	records := domain.AnnotateRecords(export, domain.AnnotateParams{
		Predictor:         p.Predictor,
		IssueMonth0:       month,
		Frequency:         freq,
		ThresholdProtocol: p.ThresholdProtocol,
		BadYears:          p.BadYears,
		DesignToolURL:     b.fetcher.DesignToolURL(exportParams),
	})
	for i := range records {
		records[i].AdminName = region.Label
	}

	return domain.NewTriggerTable(key, records)
}

func (b *Builder) publish(ctx context.Context, adminName string, table domain.TriggerTable) error {
	if b.loader == nil {
		return nil
	}
	if err := b.loader.PublishTable(ctx, adminName, table); err != nil {
		return fmt.Errorf("publish table %s: %w", table.Name, err)
	}
	b.metrics.TablesPublished.Inc()
	return nil
}
