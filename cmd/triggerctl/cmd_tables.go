package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/forecast-trigger-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/forecast-trigger-etl/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	"github.com/couchcryptid/forecast-trigger-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func newTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Build annotated trigger tables for every frequency × issue month × region",
		Long: `Build trigger tables by resolving the configured admin level's regions
and fetching one export per frequency, issue month, and region combination.

Tables are written to stdout as JSON, grouped by admin table name. With a
configured Kafka sink, each table is also published as it is built.`,
		RunE: runTables,
	}
	cmd.Flags().Bool("no-publish", false, "Skip the Kafka sink even if configured")
	return cmd
}

func runTables(cmd *cobra.Command, _ []string) error {
	tk, err := newToolkit(cmd)
	if err != nil {
		return err
	}

	noPublish, err := cmd.Flags().GetBool("no-publish")
	if err != nil {
		return err
	}

	var loader pipeline.Loader
	if tk.cfg.Kafka.Enabled && !noPublish {
		writer := kafkaadapter.NewWriter(tk.cfg.Kafka, tk.logger)
		defer func() {
			if err := writer.Close(); err != nil {
				tk.logger.Error("kafka writer close error", "error", err)
			}
		}()
		loader = writer
		tk.logger.Info("kafka publishing enabled", "topic", tk.cfg.Kafka.Topic)
	}

	builder := pipeline.New(tk.client, tk.resolver, loader, tk.logger, tk.metrics)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Long builds can expose liveness and metrics on a side port.
	if tk.cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(tk.cfg.MetricsAddr, builder, tk.logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				tk.logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				tk.logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	collection, err := builder.Build(ctx, tk.buildParams())
	if err != nil {
		return err
	}

	return writeCollection(os.Stdout, collection)
}

// writeCollection renders the table collection as nested JSON keyed by admin
// table name, then deterministic table name.
func writeCollection(w *os.File, collection domain.TableCollection) error {
	tables := make(map[string][]domain.TriggerRecord, len(collection.Tables))
	for _, table := range collection.Tables {
		tables[table.Name] = table.Records
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]map[string][]domain.TriggerRecord{
		collection.AdminName: tables,
	})
}
