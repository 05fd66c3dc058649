// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index loads harvested JSONL into a local SQLite database and
// answers full-text and aggregate queries over it.
package index

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/segmentio/encoding/json"

	"github.com/pdiddy/openalex-harvest/internal/flatten"
)

// Store manages the works SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the database at dbPath, creating parent
// directories and the schema as needed.
func NewStore(dbPath string, maxResults int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

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
		`CREATE TABLE IF NOT EXISTS works (
			id TEXT PRIMARY KEY,
			title TEXT,
			publication_year INTEGER,
			work_type TEXT,
			cited_by_count INTEGER,
			referenced_works_count INTEGER,
			citation_per_reference_ratio REAL,
			authors_count INTEGER,
			institutions_count INTEGER,
			is_multidisciplinary INTEGER,
			fields TEXT,
			domains TEXT,
			top_keywords TEXT,
			journal_name TEXT,
			research_topic TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_works_year ON works(publication_year)`,
		`CREATE INDEX IF NOT EXISTS idx_works_multi ON works(is_multidisciplinary)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='works_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE works_fts USING fts5(title, research_topic, content=works, content_rowid=rowid)`,
			`CREATE TRIGGER works_ai AFTER INSERT ON works BEGIN
				INSERT INTO works_fts(rowid, title, research_topic) VALUES (new.rowid, new.title, new.research_topic);
			END`,
			`CREATE TRIGGER works_ad AFTER DELETE ON works BEGIN
				INSERT INTO works_fts(works_fts, rowid, title, research_topic) VALUES('delete', old.rowid, old.title, old.research_topic);
			END`,
			`CREATE TRIGGER works_au AFTER UPDATE ON works BEGIN
				INSERT INTO works_fts(works_fts, rowid, title, research_topic) VALUES('delete', old.rowid, old.title, old.research_topic);
				INSERT INTO works_fts(rowid, title, research_topic) VALUES (new.rowid, new.title, new.research_topic);
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

// LoadSummary holds counts from one JSONL load.
type LoadSummary struct {
	Inserted int
	Replaced int
	Failed   int
}

// Total returns the number of lines processed.
func (s LoadSummary) Total() int {
	return s.Inserted + s.Replaced + s.Failed
}

// Load streams the cumulative JSONL file at path into the works table.
// Records sharing an id replace the earlier row (a resumed run appends,
// so re-loading must stay idempotent). Malformed lines are counted and
// skipped, not fatal. Per-line status goes to w.
func (s *Store) Load(ctx context.Context, path string, w io.Writer) (LoadSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Upsert instead of INSERT OR REPLACE: REPLACE deletes the old row
	// without firing the delete trigger, which would desync works_fts.
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO works (
			id, title, publication_year, work_type,
			cited_by_count, referenced_works_count, citation_per_reference_ratio,
			authors_count, institutions_count, is_multidisciplinary,
			fields, domains, top_keywords, journal_name, research_topic
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			publication_year = excluded.publication_year,
			work_type = excluded.work_type,
			cited_by_count = excluded.cited_by_count,
			referenced_works_count = excluded.referenced_works_count,
			citation_per_reference_ratio = excluded.citation_per_reference_ratio,
			authors_count = excluded.authors_count,
			institutions_count = excluded.institutions_count,
			is_multidisciplinary = excluded.is_multidisciplinary,
			fields = excluded.fields,
			domains = excluded.domains,
			top_keywords = excluded.top_keywords,
			journal_name = excluded.journal_name,
			research_topic = excluded.research_topic`)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	exists, err := tx.PrepareContext(ctx, `SELECT 1 FROM works WHERE id = ?`)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("preparing lookup: %w", err)
	}
	defer exists.Close()

	var summary LoadSummary

	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) == 0 && err == io.EOF {
			break
		}
		if err != nil && err != io.EOF {
			return summary, fmt.Errorf("reading %s: %w", path, err)
		}
		lineNo++

		var rec flatten.FlatRecord
		if jsonErr := json.Unmarshal(line, &rec); jsonErr != nil || rec.ID == "" {
			fmt.Fprintf(w, "skipped line %d: malformed record\n", lineNo)
			summary.Failed++
			if err == io.EOF {
				break
			}
			continue
		}

		journalName := ""
		if rec.Journal != nil {
			journalName = rec.Journal.Name
		}
		var one int
		known := exists.QueryRowContext(ctx, rec.ID).Scan(&one) == nil

		if _, execErr := stmt.ExecContext(ctx,
			rec.ID, rec.Title, rec.PublicationYear, rec.Type,
			rec.CitedByCount, rec.ReferencedWorksCount, rec.CitationPerReferenceRatio,
			rec.AuthorsCount, rec.InstitutionsCount, rec.IsMultidisciplinary,
			strings.Join(rec.Fields, ", "), strings.Join(rec.Domains, ", "),
			strings.Join(rec.TopKeywords, ", "), journalName, rec.ResearchTopic,
		); execErr != nil {
			fmt.Fprintf(w, "failed line %d: %v\n", lineNo, execErr)
			summary.Failed++
		} else if known {
			summary.Replaced++
		} else {
			summary.Inserted++
		}

		if err == io.EOF {
			break
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing load: %w", err)
	}
	return summary, nil
}

// SearchResult is one full-text match.
type SearchResult struct {
	ID                        string
	Title                     string
	PublicationYear           int
	CitationPerReferenceRatio float64
}

// Search runs an FTS5 match over title and research_topic. A limit of
// zero falls back to the store default.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.title, w.publication_year, w.citation_per_reference_ratio
		FROM works_fts f
		JOIN works w ON w.rowid = f.rowid
		WHERE works_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, text, limit)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.PublicationYear, &r.CitationPerReferenceRatio); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Stats holds aggregates over the indexed works.
type Stats struct {
	Works             int
	Multidisciplinary int
	MeanCitationRatio float64
}

// Aggregate computes summary statistics for the works table.
func (s *Store) Aggregate(ctx context.Context) (Stats, error) {
	var st Stats
	var mean sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*),
		       coalesce(sum(is_multidisciplinary), 0),
		       avg(citation_per_reference_ratio)
		FROM works`).Scan(&st.Works, &st.Multidisciplinary, &mean)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregating works: %w", err)
	}
	st.MeanCitationRatio = mean.Float64
	return st, nil
}
