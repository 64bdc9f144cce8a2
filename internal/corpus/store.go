// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus maintains the internal page corpus: a SQLite database
// with FTS5 indexing over previously fetched page text. The discovery
// executor searches it before spending external provider quota.
//
// See docs/ARCHITECTURE § Internal Corpus.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/source-scout/internal/urlx"
	"github.com/pdiddy/source-scout/pkg/types"
)

const (
	fetchedDir = "fetched"
	indexDir   = "index"
	dbFile     = "corpus.db"
)

// PageRecord is the on-disk YAML form of one fetched page under
// corpusDir/fetched/.
type PageRecord struct {
	URL       string    `yaml:"url" json:"url"`
	Title     string    `yaml:"title,omitempty" json:"title,omitempty"`
	Text      string    `yaml:"text" json:"text"`
	FetchedAt time.Time `yaml:"fetched_at,omitempty" json:"fetched_at,omitempty"`
}

// PageHit is one corpus search result.
type PageHit struct {
	URL     string `json:"url" yaml:"url"`
	Host    string `json:"host" yaml:"host"`
	Title   string `json:"title" yaml:"title"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Store manages the corpus SQLite database.
type Store struct {
	db         *sql.DB
	corpusDir  string
	maxResults int
}

// NewStore opens or creates the corpus database at
// corpusDir/index/corpus.db, creating the schema if needed.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CorpusDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, corpusDir: cfg.CorpusDir, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS pages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			canonical_url TEXT NOT NULL UNIQUE,
			host TEXT NOT NULL,
			title TEXT,
			text TEXT NOT NULL,
			fetched_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_host ON pages(host)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			file TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='pages_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE pages_fts USING fts5(title, text, content=pages, content_rowid=rowid)`,
			`CREATE TRIGGER pages_ai AFTER INSERT ON pages BEGIN
				INSERT INTO pages_fts(rowid, title, text) VALUES (new.rowid, new.title, new.text);
			END`,
			`CREATE TRIGGER pages_ad AFTER DELETE ON pages BEGIN
				INSERT INTO pages_fts(pages_fts, rowid, title, text) VALUES('delete', old.rowid, old.title, old.text);
			END`,
			`CREATE TRIGGER pages_au AFTER UPDATE ON pages BEGIN
				INSERT INTO pages_fts(pages_fts, rowid, title, text) VALUES('delete', old.rowid, old.title, old.text);
				INSERT INTO pages_fts(rowid, title, text) VALUES (new.rowid, new.title, new.text);
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

// IngestSummary holds counts from a corpus indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads page YAML files from corpusDir/fetched/ and populates the
// database. Unchanged files (by mod time) are skipped on subsequent runs;
// individual failures are logged to w and do not abort the batch.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	dir := filepath.Join(s.corpusDir, fetchedDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading fetched directory %s: %w", dir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := entry.Name()
		filePath := filepath.Join(dir, name)

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE file = ?`, name,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		var page PageRecord
		if err := yaml.Unmarshal(data, &page); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", name, err)
			summary.Failed++
			continue
		}
		if page.URL == "" {
			fmt.Fprintf(w, "failed  %s: missing url\n", name)
			summary.Failed++
			continue
		}

		if err := s.ingestPage(ctx, name, &page, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", name)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", name)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestPage(ctx context.Context, file string, page *PageRecord, modTime string) error {
	canonical, err := urlx.Canonicalize(page.URL)
	if err != nil {
		return fmt.Errorf("canonicalizing %q: %w", page.URL, err)
	}
	host := hostOf(canonical)

	fetchedAt := ""
	if !page.FetchedAt.IsZero() {
		fetchedAt = page.FetchedAt.Format(time.RFC3339)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pages (canonical_url, host, title, text, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(canonical_url) DO UPDATE SET
			host=excluded.host, title=excluded.title,
			text=excluded.text, fetched_at=excluded.fetched_at`,
		canonical, host, page.Title, page.Text, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting page: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (file, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(file) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		file, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// Search runs an FTS5 match over titles and page text and returns up to
// limit hits with highlighted snippets.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]PageHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.canonical_url, p.host, coalesce(p.title, ''),
		        snippet(pages_fts, 1, '[', ']', '...', 12)
		 FROM pages_fts
		 JOIN pages p ON p.rowid = pages_fts.rowid
		 WHERE pages_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		ftsQuery(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("corpus search: %w", err)
	}
	defer rows.Close()

	var hits []PageHit
	for rows.Next() {
		var h PageHit
		if err := rows.Scan(&h.URL, &h.Host, &h.Title, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Count returns the number of indexed pages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM pages`).Scan(&n)
	return n, err
}

// ftsQuery quotes each term so punctuation in product names does not
// break the FTS5 query grammar.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, `"`, "")
		if t == "" {
			continue
		}
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " ")
}

// hostOf extracts the normalized host from a canonical URL string.
func hostOf(canonical string) string {
	rest, ok := strings.CutPrefix(canonical, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(canonical, "http://")
		if !ok {
			return ""
		}
	}
	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		rest = rest[:idx]
	}
	return urlx.NormalizeHost(rest)
}
