package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultStations is the station board: one indicator per identifier, in order.
var DefaultStations = []string{
	"KAVX", "KRNO", "KTTD", "CYQL", "KRXE", "KJAC",
	"KPVU", "KGCN", "KLXV", "KSBS", "KCUT", "KGCK",
	"KSSF", "KEDC", "KTKI", "KADM", "KPNC", "KHUT",
	"KTOP", "KSTJ", "KLXT", "KFAM", "KCGI", "KSIK",
	"KNEW", "KNPA", "KDTS", "KNQX", "MYGF", "KISM",
	"KARW", "KGKT", "KLOU", "KHFY", "KCDI", "KTTA",
	"KFFA", "KTGI", "KCGS", "KISP", "KBID", "KALB",
	"KSJX", "KOSH", "KDLL", "KDYT",
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	Stations []string

	MetarBaseURL     string
	MetarTimeout     time.Duration
	MetarCacheTTL    time.Duration
	PollInterval     time.Duration
	FetchConcurrency int

	// Display configuration.
	DisplayEnabled bool
	Brightness     int
	LuxSensorPath  string

	// HistoryDBPath enables the SQLite history store when set.
	HistoryDBPath string

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	metarTimeout, err := parseDuration("METAR_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("METAR_CACHE_TTL", "60s", true)
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("POLL_INTERVAL", "60s", false)
	if err != nil {
		return nil, err
	}

	concurrency, err := parseIntInRange("FETCH_CONCURRENCY", 8, 1, 64)
	if err != nil {
		return nil, err
	}
	brightness, err := parseIntInRange("BRIGHTNESS", 10, 1, 10)
	if err != nil {
		return nil, err
	}

	displayEnabled, err := parseBool("DISPLAY_ENABLED", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	stations := DefaultStations
	if v := os.Getenv("STATIONS"); v != "" {
		stations = parseStations(v)
	}

	cfg := &Config{
		Stations:         stations,
		MetarBaseURL:     strings.TrimRight(sharedcfg.EnvOrDefault("METAR_BASE_URL", "https://tgftp.nws.noaa.gov/data/observations/metar/stations"), "/"),
		MetarTimeout:     metarTimeout,
		MetarCacheTTL:    cacheTTL,
		PollInterval:     pollInterval,
		FetchConcurrency: concurrency,

		DisplayEnabled: displayEnabled,
		Brightness:     brightness,
		LuxSensorPath:  os.Getenv("LUX_SENSOR_PATH"),

		HistoryDBPath: os.Getenv("HISTORY_DB_PATH"),

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "flight-categories"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if len(cfg.Stations) == 0 {
		return nil, errors.New("STATIONS must list at least one station")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

// parseStations splits a comma-separated station list, upper-casing entries.
func parseStations(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", key, lo, hi)
	}
	return n, nil
}

// parseBool accepts the forms strconv.ParseBool does (1, t, TRUE, false, ...).
func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: must be a boolean", key, s)
	}
	return b, nil
}
