package display

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

// maxScaledLux is the reading at which ScaleLux reaches full brightness.
const maxScaledLux = 5000

// ScaleLux maps an ambient light reading to a brightness level so the board
// dims at night and stays readable in daylight.
func ScaleLux(lux int) int {
	switch {
	case lux < 2000:
		return 1
	case lux < 3000:
		return 2
	case lux < 4000:
		return 3
	case lux < maxScaledLux:
		return 5
	default:
		return domain.MaxBrightness
	}
}

// StaticBrightness always returns the same level.
type StaticBrightness int

func (s StaticBrightness) Brightness(context.Context) (int, error) {
	return clampBrightness(int(s)), nil
}

// LuxFileSensor reads a raw lux value from a file, such as an IIO sysfs
// attribute, and scales it with ScaleLux.
type LuxFileSensor struct {
	Path string
}

func (s LuxFileSensor) Brightness(context.Context) (int, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("read lux sensor: %w", err)
	}
	lux, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse lux sensor %s: %w", s.Path, err)
	}
	if math.IsNaN(lux) || math.IsInf(lux, 0) {
		return 0, fmt.Errorf("lux sensor %s: non-finite reading %v", s.Path, lux)
	}
	// Anything past the top band is full brightness; clamp before int conversion.
	return ScaleLux(int(math.Max(0, math.Min(lux, maxScaledLux)))), nil
}

func clampBrightness(b int) int {
	if b < 1 {
		return 1
	}
	if b > domain.MaxBrightness {
		return domain.MaxBrightness
	}
	return b
}
