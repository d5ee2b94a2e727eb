// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists digest runs in SQLite so past alerts stay
// searchable after their emails are gone. Each run is keyed by its end
// date; recording the same date again replaces the earlier rows.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

const dbFile = "digest.db"

// Store manages the run archive SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// RunRecord is one completed digest run ready for archival.
type RunRecord struct {
	Date    string
	Scanned int
	Matched int
	Papers  map[string]types.PaperRecord
}

// NewStore opens or creates the archive database at dir/digest.db,
// creating the schema if it does not exist.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			date TEXT PRIMARY KEY,
			scanned INTEGER NOT NULL,
			matched INTEGER NOT NULL,
			papers INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_date TEXT NOT NULL REFERENCES runs(date),
			title TEXT NOT NULL,
			abstract TEXT,
			venue_year TEXT,
			authors TEXT,
			doi TEXT,
			type TEXT,
			url TEXT,
			reasons TEXT,
			alert_date TEXT,
			UNIQUE(run_date, title)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_run_date ON papers(run_date)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record stores one run and its papers. Re-recording a date replaces the
// rows from the earlier run.
func (s *Store) Record(ctx context.Context, run RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE run_date = ?`, run.Date); err != nil {
		return fmt.Errorf("deleting earlier papers: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (date, scanned, matched, papers, recorded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			scanned=excluded.scanned, matched=excluded.matched,
			papers=excluded.papers, recorded_at=excluded.recorded_at`,
		run.Date, run.Scanned, run.Matched, len(run.Papers),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (run_date, title, abstract, venue_year, authors, doi, type, url, reasons, alert_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for title, rec := range run.Papers {
		reasonsJSON, _ := json.Marshal(rec.Reasons)
		_, err := stmt.ExecContext(ctx,
			run.Date, title, rec.Abstract, rec.VenueYear, rec.Authors,
			rec.DOI, rec.Type, rec.URL, string(reasonsJSON), rec.Date,
		)
		if err != nil {
			return fmt.Errorf("inserting paper %q: %w", title, err)
		}
	}

	return tx.Commit()
}

// HistoryOptions holds parameters for archive queries.
type HistoryOptions struct {
	// Query is the FTS5 full-text search string matched against paper
	// titles and abstracts. Empty lists the newest papers unfiltered.
	Query string

	// RunDate restricts results to a single run.
	RunDate string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// HistoryResult is one archived paper with the run it was reported in.
type HistoryResult struct {
	RunDate string            `json:"run_date"`
	Title   string            `json:"title"`
	Record  types.PaperRecord `json:"record"`
}

// History searches the archive. Full-text queries are ranked by
// relevance; unfiltered listings come back newest run first.
func (s *Store) History(ctx context.Context, opts HistoryOptions) ([]HistoryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT p.run_date, p.title, p.abstract, p.venue_year, p.authors,
				p.doi, p.type, p.url, p.reasons, p.alert_date
			FROM papers_fts
			JOIN papers p ON p.rowid = papers_fts.rowid
			WHERE papers_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT p.run_date, p.title, p.abstract, p.venue_year, p.authors,
				p.doi, p.type, p.url, p.reasons, p.alert_date
			FROM papers p
			WHERE 1=1`)
	}

	if opts.RunDate != "" {
		qb.WriteString(` AND p.run_date = ?`)
		args = append(args, opts.RunDate)
	}

	if useFTS {
		qb.WriteString(` ORDER BY papers_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.run_date DESC, p.title`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []HistoryResult
	for rows.Next() {
		var (
			hr          HistoryResult
			abstract    sql.NullString
			venueYear   sql.NullString
			authors     sql.NullString
			doi         sql.NullString
			paperType   sql.NullString
			url         sql.NullString
			reasonsJSON sql.NullString
			alertDate   sql.NullString
		)

		if err := rows.Scan(
			&hr.RunDate, &hr.Title, &abstract, &venueYear, &authors,
			&doi, &paperType, &url, &reasonsJSON, &alertDate,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		hr.Record.Title = hr.Title
		hr.Record.Abstract = abstract.String
		hr.Record.VenueYear = venueYear.String
		hr.Record.Authors = authors.String
		hr.Record.DOI = doi.String
		hr.Record.Type = paperType.String
		hr.Record.URL = url.String
		hr.Record.Date = alertDate.String
		if reasonsJSON.Valid {
			json.Unmarshal([]byte(reasonsJSON.String), &hr.Record.Reasons)
		}

		results = append(results, hr)
	}

	return results, rows.Err()
}
