// Package corpus persists the split-unit catalog so other tooling can query
// what topics exist across cohorts and weeks.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS units (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	gen         TEXT NOT NULL,
	week        TEXT NOT NULL,
	subject     TEXT NOT NULL,
	session     TEXT NOT NULL,
	source      TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	title       TEXT NOT NULL,
	domain      TEXT NOT NULL DEFAULT '',
	text        TEXT NOT NULL DEFAULT '',
	start_page  INTEGER NOT NULL,
	end_page    INTEGER NOT NULL,
	pages       INTEGER NOT NULL,
	image_pages INTEGER NOT NULL,
	needs_ocr   INTEGER NOT NULL,
	format      TEXT NOT NULL,
	confidence  REAL NOT NULL,
	path        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_units_run ON units(run_id);
CREATE INDEX IF NOT EXISTS idx_units_subject ON units(gen, subject);
`

// UnitRecord is one catalog row.
type UnitRecord struct {
	RunID      string
	Gen        string
	Week       string
	Subject    string
	Session    string
	Source     string
	Seq        int
	Title      string
	Domain     string
	Text       string
	StartPage  int
	EndPage    int
	Pages      int
	ImagePages int
	NeedsOCR   bool
	Format     string
	Confidence float64
	Path       string
}

// Store is a SQLite-backed unit catalog.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the catalog at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// InsertUnit appends one unit row.
func (s *Store) InsertUnit(ctx context.Context, u UnitRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO units (run_id, gen, week, subject, session, source, seq, title, domain, text,
			start_page, end_page, pages, image_pages, needs_ocr, format, confidence, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.RunID, u.Gen, u.Week, u.Subject, u.Session, u.Source, u.Seq, u.Title, u.Domain, u.Text,
		u.StartPage, u.EndPage, u.Pages, u.ImagePages, u.NeedsOCR, u.Format, u.Confidence, u.Path)
	if err != nil {
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

// UnitsByRun returns the units produced by one run, in insertion order.
func (s *Store) UnitsByRun(ctx context.Context, runID string) ([]UnitRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, gen, week, subject, session, source, seq, title, domain, text,
			start_page, end_page, pages, image_pages, needs_ocr, format, confidence, path
		FROM units WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []UnitRecord
	for rows.Next() {
		var u UnitRecord
		if err := rows.Scan(&u.RunID, &u.Gen, &u.Week, &u.Subject, &u.Session, &u.Source,
			&u.Seq, &u.Title, &u.Domain, &u.Text, &u.StartPage, &u.EndPage, &u.Pages,
			&u.ImagePages, &u.NeedsOCR, &u.Format, &u.Confidence, &u.Path); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// CountBySubject returns per-subject unit counts for one cohort.
func (s *Store) CountBySubject(ctx context.Context, gen string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, COUNT(*) FROM units WHERE gen = ? GROUP BY subject`, gen)
	if err != nil {
		return nil, fmt.Errorf("count units: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var subject string
		var n int
		if err := rows.Scan(&subject, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[subject] = n
	}
	return counts, rows.Err()
}
