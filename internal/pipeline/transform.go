package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

// ReportClassifier implements Classifier with the domain decoders.
type ReportClassifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *ReportClassifier {
	return &ReportClassifier{logger: logger}
}

func (c *ReportClassifier) Classify(_ context.Context, index int, r domain.RawReport) (domain.StationCategory, error) {
	fc, err := domain.ClassifyReport(r)
	if err != nil {
		return domain.StationCategory{}, err
	}
	c.logger.Debug("station classified",
		"station", r.Station,
		"wind", fc.Wind,
		"ceiling", fc.Ceiling,
		"visibility", fc.Visibility,
		"category", fc.Category,
	)
	return domain.NewStationCategory(index, r, fc), nil
}
