//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/metar-flight-category/internal/adapter/history"
	"github.com/couchcryptid/metar-flight-category/internal/adapter/kafka"
	"github.com/couchcryptid/metar-flight-category/internal/adapter/noaa"
	"github.com/couchcryptid/metar-flight-category/internal/config"
	"github.com/couchcryptid/metar-flight-category/internal/domain"
	"github.com/couchcryptid/metar-flight-category/internal/observability"
	"github.com/couchcryptid/metar-flight-category/internal/pipeline"
)

const testSinkTopic = "test-flight-categories"

// stationFiles mimics the NWS station file directory.
var stationFiles = map[string]string{
	"KSFO": "2026/03/05 12:56\nKSFO 051256Z 28011KT 10SM SCT110 BKN180 11/06 A3001\n",
	"KJAC": "2026/03/05 12:53\nKJAC 051253Z 22027G35KT 1 1/2SM -SN BR OVC008 M04/M06 A2990\n",
	"KRNO": "2026/03/05 12:55\nKRNO 051255Z 18016KT 4SM HZ BKN025 22/03 A3002\n",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func stationServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		station := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".TXT")
		body, ok := stationFiles[station]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestPipelineToKafkaAndHistory polls a fake station directory and checks the
// cycle lands on the Kafka sink topic and in the history store.
func TestPipelineToKafkaAndHistory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	client := noaa.NewClient(stationServer(t).URL, 5*time.Second, metrics, logger)

	writer := kafka.NewWriter(cfg, logger)
	t.Cleanup(func() { _ = writer.Close() })

	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	stations := []string{"KSFO", "KMIA", "KJAC", "KRNO"}
	p := pipeline.New(client, pipeline.NewClassifier(logger), pipeline.Loaders{writer, store}, logger, metrics, pipeline.Options{
		Stations:    stations,
		Concurrency: 2,
	})

	categories, err := p.Poll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3, "KMIA has no station file and is skipped")

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := make(map[string]domain.StationCategory)
	for range categories {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		var sc domain.StationCategory
		require.NoError(t, json.Unmarshal(msg.Value, &sc))
		assert.Equal(t, sc.Station, string(msg.Key))

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, sc.Flight.Category.String(), headers["flight_category"])
		_, err = time.Parse(time.RFC3339, headers["processed_at"])
		assert.NoError(t, err, "processed_at should be valid RFC3339")

		got[sc.Station] = sc
	}

	assert.Equal(t, domain.Normal, got["KSFO"].Flight.Category)
	assert.Equal(t, domain.LowInstrument, got["KJAC"].Flight.Category)
	assert.Equal(t, domain.Marginal, got["KRNO"].Flight.Category)
	assert.Equal(t, 2, got["KJAC"].Index)
	assert.Equal(t, time.Date(2026, 3, 5, 12, 53, 0, 0, time.UTC), got["KJAC"].ObservedAt)

	records, err := store.History(ctx, "KJAC", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.LowInstrument, records[0].Flight.Category)

	// A second poll of unchanged reports adds no history rows.
	_, err = p.Poll(ctx)
	require.NoError(t, err)
	records, err = store.History(ctx, "KJAC", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
