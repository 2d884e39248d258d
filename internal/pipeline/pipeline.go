package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
	"github.com/couchcryptid/metar-flight-category/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Classifier turns a fetched report into a station category.
type Classifier interface {
	Classify(ctx context.Context, index int, r domain.RawReport) (domain.StationCategory, error)
}

// BatchLoader receives the categories of one polling cycle.
type BatchLoader interface {
	LoadBatch(ctx context.Context, categories []domain.StationCategory) error
}

// Loaders fans a batch out to several loaders. Every loader is called even
// when an earlier one fails; the errors are joined.
type Loaders []BatchLoader

func (ls Loaders) LoadBatch(ctx context.Context, categories []domain.StationCategory) error {
	var errs []error
	for _, l := range ls {
		if err := l.LoadBatch(ctx, categories); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options tunes a Pipeline.
type Options struct {
	Stations    []string
	Interval    time.Duration
	Concurrency int
	// Clock drives the polling interval and poll timing. Nil uses the real clock.
	Clock clockwork.Clock
}

// Pipeline polls every station, classifies the reports, and loads the results.
type Pipeline struct {
	fetcher    domain.Fetcher
	classifier Classifier
	loader     BatchLoader
	logger     *slog.Logger
	metrics    *observability.Metrics
	opts       Options
	ready      atomic.Bool

	mu     sync.RWMutex
	latest []domain.StationCategory
}

// New creates a Pipeline with the given stages and observability.
func New(f domain.Fetcher, c Classifier, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Pipeline{
		fetcher:    f,
		classifier: c,
		loader:     l,
		logger:     logger,
		metrics:    metrics,
		opts:       opts,
	}
}

// CheckReadiness returns nil once a polling cycle has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded a polling cycle yet")
	}
	return nil
}

// Latest returns a copy of the most recently loaded cycle.
func (p *Pipeline) Latest() []domain.StationCategory {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.StationCategory, len(p.latest))
	copy(out, p.latest)
	return out
}

// Run polls immediately and then once per interval until the context is
// cancelled. A failed load is retried early with exponential backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"stations", len(p.opts.Stations),
		"interval", p.opts.Interval,
		"concurrency", p.opts.Concurrency,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		wait := p.opts.Interval
		if _, err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			wait = backoff
			backoff = nextBackoff(backoff, maxBackoff)
		} else {
			backoff = initialBackoff
		}

		if !p.sleep(ctx, wait) {
			break
		}
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// Poll runs one fetch-classify-load cycle and returns the loaded categories
// in station order. Stations whose report cannot be fetched or decoded are
// logged and left out of the cycle.
func (p *Pipeline) Poll(ctx context.Context) ([]domain.StationCategory, error) {
	start := p.opts.Clock.Now()
	p.metrics.Polls.Inc()
	defer func() {
		p.metrics.PollDuration.Observe(p.opts.Clock.Since(start).Seconds())
	}()

	reports := p.fetchAll(ctx)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	categories := make([]domain.StationCategory, 0, len(reports))
	for i, r := range reports {
		if r == nil {
			continue
		}
		sc, err := p.classifier.Classify(ctx, i, *r)
		if err != nil {
			p.logger.Warn("decode failed, skipping station", "station", r.Station, "error", err)
			p.metrics.DecodeErrors.Inc()
			continue
		}
		categories = append(categories, sc)
	}

	if len(categories) == 0 {
		p.logger.Warn("no station classified in this cycle")
		return nil, nil
	}

	if err := p.loader.LoadBatch(ctx, categories); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(categories))
		p.metrics.LoadErrors.Inc()
		return nil, err
	}

	for _, sc := range categories {
		p.metrics.StationsClassified.WithLabelValues(sc.Flight.Category.String()).Inc()
	}

	p.mu.Lock()
	p.latest = categories
	p.mu.Unlock()
	p.ready.Store(true)

	p.logger.Info("cycle loaded", "classified", len(categories), "stations", len(p.opts.Stations))
	return categories, nil
}

// fetchAll fetches every station with bounded concurrency. The result is
// indexed like Options.Stations; a nil entry marks a failed fetch.
func (p *Pipeline) fetchAll(ctx context.Context) []*domain.RawReport {
	stations := p.opts.Stations
	results := make([]*domain.RawReport, len(stations))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(p.opts.Concurrency, len(stations))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := p.fetcher.Fetch(ctx, stations[i])
				if err != nil {
					if ctx.Err() == nil {
						p.logger.Warn("fetch failed, skipping station", "station", stations[i], "error", err)
						p.metrics.FetchErrors.Inc()
					}
					continue
				}
				results[i] = &r
			}
		}()
	}

	for i := range stations {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := p.opts.Clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
