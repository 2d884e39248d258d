package display

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

// RGB is one pixel colour.
type RGB [3]int

// baseColors are the per-tier pixel colours at brightness 1.
var baseColors = map[domain.SeverityTier]RGB{
	domain.Normal:        {0, 1, 0}, // green
	domain.Marginal:      {0, 0, 2}, // blue
	domain.Instrument:    {1, 0, 0}, // red
	domain.LowInstrument: {1, 0, 2}, // magenta
}

var tierColors = map[domain.SeverityTier]lipgloss.Color{
	domain.Normal:        lipgloss.Color("#6BCF7F"),
	domain.Marginal:      lipgloss.Color("#4A90E2"),
	domain.Instrument:    lipgloss.Color("#FF6B6B"),
	domain.LowInstrument: lipgloss.Color("#D36BFF"),
}

// PixelColor returns the tier colour scaled by brightness.
func PixelColor(tier domain.SeverityTier, brightness int) RGB {
	base := baseColors[tier]
	b := clampBrightness(brightness)
	return RGB{base[0] * b, base[1] * b, base[2] * b}
}

// Board is a console rendition of the station indicator string. It
// implements domain.Display.
type Board struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
	staged   map[int]string
}

// NewBoard creates a board that writes to w.
func NewBoard(w io.Writer) *Board {
	return &Board{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
		staged:   make(map[int]string),
	}
}

// Render stages one station's indicator line.
func (b *Board) Render(index int, station string, fc domain.FlightCategory, brightness int) error {
	if !fc.Category.Valid() {
		return fmt.Errorf("render %s: invalid category %s", station, fc.Category)
	}
	style := b.renderer.NewStyle().Foreground(tierColors[fc.Category]).Bold(true)
	px := PixelColor(fc.Category, brightness)
	line := fmt.Sprintf("%3d %s %-4s rgb(%d,%d,%d)",
		index, style.Render(fmt.Sprintf("%-4s", station)), fc.Category, px[0], px[1], px[2])

	b.mu.Lock()
	b.staged[index] = line
	b.mu.Unlock()
	return nil
}

// Show writes staged lines in index order and clears them.
func (b *Board) Show() error {
	b.mu.Lock()
	staged := b.staged
	b.staged = make(map[int]string)
	b.mu.Unlock()

	indexes := make([]int, 0, len(staged))
	for i := range staged {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	var sb strings.Builder
	for _, i := range indexes {
		sb.WriteString(staged[i])
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(b.w, sb.String())
	return err
}

// SelfTest lights every position in each tier colour, one tier at a time.
func (b *Board) SelfTest(stations []string, brightness int) error {
	for _, tier := range domain.Tiers() {
		fc := domain.FlightCategory{Category: tier}
		for i, s := range stations {
			if err := b.Render(i, s, fc, brightness); err != nil {
				return err
			}
		}
		if err := b.Show(); err != nil {
			return err
		}
	}
	return nil
}

// Loader pushes each polling cycle to a Display at the current brightness.
type Loader struct {
	display    domain.Display
	brightness domain.BrightnessProvider
	logger     *slog.Logger
}

// NewLoader creates a display loader.
func NewLoader(d domain.Display, bp domain.BrightnessProvider, logger *slog.Logger) *Loader {
	return &Loader{display: d, brightness: bp, logger: logger}
}

// LoadBatch reads the brightness once, renders every station, then shows.
// A failed brightness read falls back to full brightness.
func (l *Loader) LoadBatch(ctx context.Context, categories []domain.StationCategory) error {
	level, err := l.brightness.Brightness(ctx)
	if err != nil {
		l.logger.Warn("brightness read failed, using maximum", "error", err)
		level = domain.MaxBrightness
	}

	for _, sc := range categories {
		if err := l.display.Render(sc.Index, sc.Station, sc.Flight, level); err != nil {
			return err
		}
	}
	return l.display.Show()
}
