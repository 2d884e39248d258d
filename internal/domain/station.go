package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// MaxBrightness is the top of the brightness scale used by displays.
const MaxBrightness = 10

// RawReport is one fetched report. It lives for a single classification.
type RawReport struct {
	Station    string
	Body       string
	ObservedAt time.Time
}

// StationCategory is the classification of one station in a polling cycle.
type StationCategory struct {
	ID          string         `json:"id"`
	Station     string         `json:"station"`
	Index       int            `json:"index"`
	Report      string         `json:"report"`
	ObservedAt  time.Time      `json:"observed_at,omitempty"`
	Flight      FlightCategory `json:"flight_category"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// NewStationCategory wraps a classification result for downstream loaders.
func NewStationCategory(index int, r RawReport, fc FlightCategory) StationCategory {
	return StationCategory{
		ID:          generateID(r.Station, r.Body),
		Station:     r.Station,
		Index:       index,
		Report:      r.Body,
		ObservedAt:  r.ObservedAt,
		Flight:      fc,
		ProcessedAt: clock.Now(),
	}
}

// generateID derives a stable ID from the station and report text, so
// re-polling an unchanged report yields the same ID.
func generateID(station, body string) string {
	hash := sha256.Sum256([]byte(station + "|" + body))
	short := hex.EncodeToString(hash[:8])
	if station == "" {
		return short
	}
	return station + "-" + short
}

// Fetcher retrieves the current report for a station.
type Fetcher interface {
	Fetch(ctx context.Context, station string) (RawReport, error)
}

// BrightnessProvider returns a display brightness in 1..MaxBrightness.
type BrightnessProvider interface {
	Brightness(ctx context.Context) (int, error)
}

// Display renders station categories. Render stages one station; Show
// pushes everything staged since the last Show.
type Display interface {
	Render(index int, station string, fc FlightCategory, brightness int) error
	Show() error
}
