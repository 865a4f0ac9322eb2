// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads parsed abstract records into a SQLite database and
// searches them by title and author.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/abstract-scraper/internal/rawstore"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

const defaultMaxResults = 20

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the catalog database at cfg.Path and creates
// the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
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
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			reference TEXT,
			date_posted TEXT NOT NULL,
			last_revised TEXT,
			date_written TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			url TEXT,
			university_name TEXT,
			university_url TEXT,
			PRIMARY KEY (paper_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authors_name ON authors(name)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// LoadSummary holds counts from a catalog load.
type LoadSummary struct {
	Inserted int
	Updated  int
}

// Total returns the number of records loaded.
func (s LoadSummary) Total() int {
	return s.Inserted + s.Updated
}

// Load streams the parsed-record JSON array at path into the catalog.
// Records already present (same id) are replaced with their authors.
func (s *Store) Load(ctx context.Context, path string, w io.Writer) (LoadSummary, error) {
	var summary LoadSummary
	for rec, err := range rawstore.Records[types.ParsedRecord](path) {
		if err != nil {
			return summary, fmt.Errorf("reading parsed records: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		updated, err := s.Put(ctx, rec)
		if err != nil {
			return summary, err
		}
		if updated {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	fmt.Fprintf(w, "loaded: %d inserted, %d updated\n", summary.Inserted, summary.Updated)
	return summary, nil
}

// Put inserts or replaces one record. It reports whether the id existed.
func (s *Store) Put(ctx context.Context, rec types.ParsedRecord) (updated bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM papers WHERE id = ?`, rec.ID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking paper %d: %w", rec.ID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO papers (id, url, title, reference, date_posted, last_revised, date_written)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			url=excluded.url, title=excluded.title, reference=excluded.reference,
			date_posted=excluded.date_posted, last_revised=excluded.last_revised,
			date_written=excluded.date_written`,
		rec.ID, rec.URL, rec.Title, nullString(rec.Reference), rec.DatePosted,
		nullString(rec.LastRevised), nullString(rec.DateWritten),
	)
	if err != nil {
		return false, fmt.Errorf("upserting paper %d: %w", rec.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE paper_id = ?`, rec.ID); err != nil {
		return false, fmt.Errorf("deleting old authors of %d: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO authors (paper_id, position, name, url, university_name, university_url)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return false, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range rec.Authors {
		if _, err := stmt.ExecContext(ctx, rec.ID, a.Position, a.Name, a.URL, a.UniversityName, nullString(a.UniversityURL)); err != nil {
			return false, fmt.Errorf("inserting author %d of %d: %w", a.Position, rec.ID, err)
		}
	}

	return exists > 0, tx.Commit()
}

// QueryOptions holds catalog search parameters.
type QueryOptions struct {
	// Title matches papers whose title contains the text (case-insensitive).
	Title string

	// Author matches papers with an author whose name contains the text.
	Author string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Title == "" && q.Author == ""
}

// Search returns records matching all given filters, newest id first.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]types.ParsedRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, url, title, reference, date_posted, last_revised, date_written
		FROM papers p WHERE 1=1`)
	if opts.Title != "" {
		qb.WriteString(` AND p.title LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(opts.Title))
	}
	if opts.Author != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM authors a WHERE a.paper_id = p.id AND a.name LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(opts.Author))
	}
	qb.WriteString(` ORDER BY p.id DESC LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}

	var results []types.ParsedRecord
	for rows.Next() {
		rec, err := scanPaper(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, *rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		authors, err := s.authors(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Authors = authors
	}
	return results, nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id int) (*types.ParsedRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, reference, date_posted, last_revised, date_written
		 FROM papers WHERE id = ?`, id)
	rec, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("paper %d not found", id)
		}
		return nil, err
	}

	rec.Authors, err = s.authors(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) authors(ctx context.Context, paperID int) ([]types.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, name, url, university_name, university_url
		 FROM authors WHERE paper_id = ? ORDER BY position`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying authors of %d: %w", paperID, err)
	}
	defer rows.Close()

	authors := []types.Author{}
	for rows.Next() {
		var (
			a       types.Author
			url     sql.NullString
			uniName sql.NullString
			uniURL  sql.NullString
		)
		if err := rows.Scan(&a.Position, &a.Name, &url, &uniName, &uniURL); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		a.URL = url.String
		a.UniversityName = uniName.String
		a.UniversityURL = optional(uniURL)
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(row scanner) (*types.ParsedRecord, error) {
	var rec types.ParsedRecord
	var reference, revised, written sql.NullString
	if err := row.Scan(&rec.ID, &rec.URL, &rec.Title, &reference, &rec.DatePosted, &revised, &written); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning paper: %w", err)
	}
	rec.Reference = optional(reference)
	rec.LastRevised = optional(revised)
	rec.DateWritten = optional(written)
	return &rec, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func optional(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return types.Optional(ns.String)
}

// likePattern wraps text in % wildcards, escaping LIKE metacharacters.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(text) + "%"
}
