package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
	"github.com/couchcryptid/metar-flight-category/internal/observability"
)

// DefaultBaseURL serves one text file per station, e.g. KSFO.TXT.
const DefaultBaseURL = "https://tgftp.nws.noaa.gov/data/observations/metar/stations"

// maxReportBytes bounds how much of a station file is read.
const maxReportBytes = 64 << 10

// observedLayout is the timestamp line at the top of a station file.
const observedLayout = "2006/01/02 15:04"

// ErrStationNotFound is returned when the server has no file for a station.
var ErrStationNotFound = errors.New("station not found")

// Client implements domain.Fetcher against the NWS station file directory.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a station file client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads and splits the current report for a station.
func (c *Client) Fetch(ctx context.Context, station string) (domain.RawReport, error) {
	station = strings.ToUpper(strings.TrimSpace(station))
	if station == "" {
		return domain.RawReport{}, errors.New("empty station identifier")
	}

	u := fmt.Sprintf("%s/%s.TXT", c.baseURL, url.PathEscape(station))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.RawReport{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.RawReport{}, fmt.Errorf("fetch %s: %w", station, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.FetchRequests.WithLabelValues("not_found").Inc()
		return domain.RawReport{}, fmt.Errorf("fetch %s: %w", station, ErrStationNotFound)
	case resp.StatusCode != http.StatusOK:
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RawReport{}, fmt.Errorf("fetch %s: status %d: %s", station, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes))
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.RawReport{}, fmt.Errorf("read %s: %w", station, err)
	}

	report, err := parseStationFile(station, string(body))
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.RawReport{}, err
	}

	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.logger.Debug("report fetched", "station", station, "observed_at", report.ObservedAt)
	return report, nil
}

// parseStationFile splits a station file into its timestamp and report lines.
// Files without a leading timestamp are taken whole as the report.
func parseStationFile(station, body string) (domain.RawReport, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.RawReport{}, fmt.Errorf("fetch %s: empty report", station)
	}

	report := domain.RawReport{Station: station, Body: body}

	first, rest, _ := strings.Cut(body, "\n")
	observed, err := time.Parse(observedLayout, strings.TrimSpace(first))
	if err != nil {
		return report, nil
	}

	rest = strings.Join(strings.Fields(rest), " ")
	if rest == "" {
		return domain.RawReport{}, fmt.Errorf("fetch %s: empty report", station)
	}
	report.Body = rest
	report.ObservedAt = observed.UTC()
	return report, nil
}
