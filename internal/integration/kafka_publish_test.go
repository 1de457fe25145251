//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/forecast-trigger-etl/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-trigger-etl/internal/config"
	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-trigger-tables"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a topic through the cluster controller so the producer
// does not race topic auto-creation.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic")
}

// publishedTable holds a deserialized message read from the sink topic.
type publishedTable struct {
	AdminName string                 `json:"admin_name"`
	Table     string                 `json:"table"`
	BuiltAt   time.Time              `json:"built_at"`
	Records   []domain.TriggerRecord `json:"records"`
}

// readPublished reads a single message from the sink consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (publishedTable, kafkago.Message) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	var payload publishedTable
	require.NoError(t, json.Unmarshal(msg.Value, &payload), "unmarshal sink message")
	return payload, msg
}

// TestWriterPublishTable verifies the Loader adapter: kafka.Writer round-trips
// a built trigger table through a real broker with its key and headers intact.
func TestWriterPublishTable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	builtAt := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(builtAt))
	t.Cleanup(func() { domain.SetClock(nil) })

	key := domain.TableKey{Frequency: 30, Mode: 1, IssueMonth: 2, RegionKey: "ET05"}
	table := domain.NewTriggerTable(key, []domain.TriggerRecord{
		{
			Year:              2015,
			Frequency:         "30%",
			IssueMonth:        "Mar",
			Forecast:          41.2,
			ForecastThreshold: 38.0,
			TriggerDifference: 3.2,
			Triggered:         true,
			ActInVain:         2,
			FailToAct:         1,
			WorthyAction:      5,
			WorthyInaction:    12,
		},
	})

	writer := kafka.NewWriter(config.Kafka{
		Brokers: []string{broker},
		Topic:   testSinkTopic,
	}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishTable(ctx, "South Omo", table))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	payload, msg := readPublished(ctx, t, consumer)

	// Key is the deterministic table name so replays compact cleanly.
	assert.Equal(t, "output_freq_30_mode_1_month_2_region_ET05_table", string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "South Omo", headers["admin_name"])
	stamped, err := time.Parse(time.RFC3339, headers["built_at"])
	require.NoError(t, err, "invalid built_at header")
	assert.True(t, stamped.Equal(builtAt))

	assert.Equal(t, "South Omo", payload.AdminName)
	assert.Equal(t, table.Name, payload.Table)
	assert.True(t, payload.BuiltAt.Equal(builtAt))
	require.Len(t, payload.Records, 1)
	rec := payload.Records[0]
	assert.Equal(t, 2015, rec.Year)
	assert.Equal(t, "30%", rec.Frequency)
	assert.Equal(t, "Mar", rec.IssueMonth)
	assert.InDelta(t, 3.2, rec.TriggerDifference, 1e-9)
	assert.True(t, rec.Triggered)
}

// TestWriterEmptyTable verifies that a table with no surviving records still
// publishes, so dashboard consumers see the build attempt.
func TestWriterEmptyTable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	key := domain.TableKey{Frequency: 15, Mode: 0, IssueMonth: 5, RegionKey: "ET"}
	table := domain.NewTriggerTable(key, nil)

	writer := kafka.NewWriter(config.Kafka{
		Brokers: []string{broker},
		Topic:   testSinkTopic,
	}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishTable(ctx, "Ethiopia", table))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	payload, msg := readPublished(ctx, t, consumer)
	assert.Equal(t, "output_freq_15_mode_0_month_5_region_ET_table", string(msg.Key))
	assert.Equal(t, "Ethiopia", payload.AdminName)
	assert.Empty(t, payload.Records)
}
