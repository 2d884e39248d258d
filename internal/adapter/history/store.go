// Package history persists station classifications to SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

// Store implements pipeline.BatchLoader on a SQLite database.
type Store struct {
	db *sql.DB

	mu      sync.Mutex // guards entropy
	entropy *rand.Rand
}

// Record is one stored classification.
type Record struct {
	RowID string `json:"row_id"`
	domain.StationCategory
}

// CategoryCount is the number of stored classifications in one category.
type CategoryCount struct {
	Category domain.SeverityTier `json:"category"`
	Count    int                 `json:"count"`
}

// NewStore opens or creates a SQLite database at the given path.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS classifications (
		id           TEXT PRIMARY KEY,
		report_id    TEXT NOT NULL,
		station      TEXT NOT NULL,
		idx          INTEGER NOT NULL,
		report       TEXT NOT NULL,
		observed_at  TEXT,
		wind         TEXT NOT NULL,
		ceiling      TEXT NOT NULL,
		visibility   TEXT NOT NULL,
		category     TEXT NOT NULL,
		processed_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_classifications_report ON classifications(report_id);
	CREATE INDEX IF NOT EXISTS idx_classifications_station ON classifications(station, processed_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadBatch stores one polling cycle. A report already stored (same station
// and text) is skipped, so polling an unchanged report adds no rows.
func (s *Store) LoadBatch(ctx context.Context, categories []domain.StationCategory) error {
	if len(categories) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO classifications
		 (id, report_id, station, idx, report, observed_at, wind, ceiling, visibility, category, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sc := range categories {
		var observed *string
		if !sc.ObservedAt.IsZero() {
			o := sc.ObservedAt.UTC().Format(time.RFC3339)
			observed = &o
		}
		fc := sc.Flight
		_, err := stmt.ExecContext(ctx,
			s.newID(sc.ProcessedAt), sc.ID, sc.Station, sc.Index, sc.Report, observed,
			fc.Wind.String(), fc.Ceiling.String(), fc.Visibility.String(), fc.Category.String(),
			sc.ProcessedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert %s: %w", sc.Station, err)
		}
	}

	return tx.Commit()
}

// History returns up to limit classifications for a station, newest first.
func (s *Store) History(ctx context.Context, station string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, station, idx, report, observed_at, wind, ceiling, visibility, category, processed_at
		 FROM classifications WHERE station = ?
		 ORDER BY processed_at DESC LIMIT ?`, station, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CategoryCounts returns how many stored classifications fall in each category.
func (s *Store) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM classifications GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.SeverityTier]int)
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, err
		}
		tier, err := domain.ParseTier(code)
		if err != nil {
			return nil, err
		}
		counts[tier] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]CategoryCount, 0, len(counts))
	for _, tier := range domain.Tiers() {
		if n, ok := counts[tier]; ok {
			out = append(out, CategoryCount{Category: tier, Count: n})
		}
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec                                 Record
		observed                            sql.NullString
		wind, ceiling, visibility, category string
		processed                           string
	)
	err := row.Scan(&rec.RowID, &rec.ID, &rec.Station, &rec.Index, &rec.Report, &observed,
		&wind, &ceiling, &visibility, &category, &processed)
	if err != nil {
		return Record{}, fmt.Errorf("scan classification: %w", err)
	}

	fc := &rec.Flight
	for _, f := range []struct {
		code string
		dst  *domain.SeverityTier
	}{
		{wind, &fc.Wind},
		{ceiling, &fc.Ceiling},
		{visibility, &fc.Visibility},
		{category, &fc.Category},
	} {
		tier, err := domain.ParseTier(f.code)
		if err != nil {
			return Record{}, err
		}
		*f.dst = tier
	}

	if observed.Valid {
		if rec.ObservedAt, err = time.Parse(time.RFC3339, observed.String); err != nil {
			return Record{}, fmt.Errorf("parse observed_at %q: %w", observed.String, err)
		}
	}
	if rec.ProcessedAt, err = time.Parse(time.RFC3339Nano, processed); err != nil {
		return Record{}, fmt.Errorf("parse processed_at %q: %w", processed, err)
	}
	return rec, nil
}
