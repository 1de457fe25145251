// Package kafka publishes built trigger tables to a sink topic for
// downstream dashboard consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/forecast-trigger-etl/internal/config"
	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces trigger-table messages to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg config.Kafka, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishTable serializes one trigger table and writes it to the sink topic,
// keyed by the deterministic table name so replays compact cleanly.
func (w *Writer) PublishTable(ctx context.Context, adminName string, table domain.TriggerTable) error {
	msg, err := serializeToMessage(adminName, table)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// tablePayload is the wire form of one published table.
type tablePayload struct {
	AdminName string                 `json:"admin_name"`
	Table     string                 `json:"table"`
	BuiltAt   time.Time              `json:"built_at"`
	Records   []domain.TriggerRecord `json:"records"`
}

// serializeToMessage marshals a trigger table into a Kafka message.
func serializeToMessage(adminName string, table domain.TriggerTable) (kafkago.Message, error) {
	data, err := json.Marshal(tablePayload{
		AdminName: adminName,
		Table:     table.Name,
		BuiltAt:   table.BuiltAt,
		Records:   table.Records,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize trigger table: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(table.Name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "admin_name", Value: []byte(adminName)},
			{Key: "built_at", Value: []byte(table.BuiltAt.Format(time.RFC3339))},
		},
	}, nil
}
