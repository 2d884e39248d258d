package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultStations, cfg.Stations)
	assert.Len(t, cfg.Stations, 46)
	assert.Equal(t, "https://tgftp.nws.noaa.gov/data/observations/metar/stations", cfg.MetarBaseURL)
	assert.Equal(t, 5*time.Second, cfg.MetarTimeout)
	assert.Equal(t, 60*time.Second, cfg.MetarCacheTTL)
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.True(t, cfg.DisplayEnabled)
	assert.Equal(t, 10, cfg.Brightness)
	assert.Empty(t, cfg.LuxSensorPath)
	assert.Empty(t, cfg.HistoryDBPath)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "flight-categories", cfg.KafkaSinkTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("STATIONS", "ksfo, KRNO,,kjac ")
	t.Setenv("METAR_BASE_URL", "http://localhost:9999/stations/")
	t.Setenv("METAR_TIMEOUT", "2s")
	t.Setenv("METAR_CACHE_TTL", "0s")
	t.Setenv("POLL_INTERVAL", "5m")
	t.Setenv("FETCH_CONCURRENCY", "4")
	t.Setenv("DISPLAY_ENABLED", "false")
	t.Setenv("BRIGHTNESS", "3")
	t.Setenv("LUX_SENSOR_PATH", "/sys/bus/iio/devices/iio:device0/in_illuminance_raw")
	t.Setenv("HISTORY_DB_PATH", "/tmp/history.db")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"KSFO", "KRNO", "KJAC"}, cfg.Stations)
	assert.Equal(t, "http://localhost:9999/stations", cfg.MetarBaseURL)
	assert.Equal(t, 2*time.Second, cfg.MetarTimeout)
	assert.Equal(t, time.Duration(0), cfg.MetarCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.False(t, cfg.DisplayEnabled)
	assert.Equal(t, 3, cfg.Brightness)
	assert.Equal(t, "/sys/bus/iio/devices/iio:device0/in_illuminance_raw", cfg.LuxSensorPath)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryDBPath)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"METAR_TIMEOUT", "bad"},
		{"METAR_TIMEOUT", "0s"},
		{"METAR_CACHE_TTL", "-1s"},
		{"POLL_INTERVAL", "0s"},
		{"POLL_INTERVAL", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_IntRanges(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FETCH_CONCURRENCY", "0"},
		{"FETCH_CONCURRENCY", "65"},
		{"FETCH_CONCURRENCY", "many"},
		{"BRIGHTNESS", "0"},
		{"BRIGHTNESS", "11"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_BoolFlags(t *testing.T) {
	tests := []struct {
		display, kafka string
		wantDisplay    bool
		wantKafka      bool
	}{
		{"TRUE", "1", true, true},
		{"0", "t", false, true},
		{"False", "false", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.display+"/"+tt.kafka, func(t *testing.T) {
			t.Setenv("DISPLAY_ENABLED", tt.display)
			t.Setenv("KAFKA_ENABLED", tt.kafka)
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantDisplay, cfg.DisplayEnabled)
			assert.Equal(t, tt.wantKafka, cfg.KafkaEnabled)
		})
	}
}

func TestLoad_InvalidBoolFlags(t *testing.T) {
	for _, key := range []string{"DISPLAY_ENABLED", "KAFKA_ENABLED"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "yes")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_EmptyStationList(t *testing.T) {
	t.Setenv("STATIONS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATIONS")
}

func TestLoad_KafkaDisabledIgnoresTopic(t *testing.T) {
	t.Setenv("KAFKA_SINK_TOPIC", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
