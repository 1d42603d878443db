// Package search implements the ranked full-text lookup over book titles and
// author names. The catalog is the system of record; the index here is a
// derived, rebuildable structure populated from a catalog snapshot at startup
// (and optionally on a schedule). Staleness between rebuilds is accepted.
package search

import (
	"database/sql"
	"fmt"
	"strings"
)

// IndexEntry is one indexable row of the snapshot.
type IndexEntry struct {
	ID   uint
	Name string
}

// Snapshot is the full index input: every book (id, title) and every author
// (id, name) currently in the catalog.
type Snapshot struct {
	Books   []IndexEntry
	Authors []IndexEntry
}

// Index is a handle over the two FTS5 virtual tables. The tables are only
// ever replaced wholesale by BuildIndex, so an Index is immutable from the
// caller's point of view.
type Index struct {
	db *sql.DB
}

// BuildIndex drops and recreates the FTS5 tables and bulk-loads the snapshot
// in a single transaction, then returns a handle over the fresh index.
func BuildIndex(db *sql.DB, snap Snapshot) (*Index, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin index build: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DROP TABLE IF EXISTS book_fts;`,
		`DROP TABLE IF EXISTS author_fts;`,
		`CREATE VIRTUAL TABLE book_fts USING fts5(name);`,
		`CREATE VIRTUAL TABLE author_fts USING fts5(name);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create index tables: %w", err)
		}
	}

	for _, b := range snap.Books {
		if _, err := tx.Exec(`INSERT INTO book_fts(rowid, name) VALUES(?, ?)`, b.ID, b.Name); err != nil {
			return nil, fmt.Errorf("failed to index book %d: %w", b.ID, err)
		}
	}
	for _, a := range snap.Authors {
		if _, err := tx.Exec(`INSERT INTO author_fts(rowid, name) VALUES(?, ?)`, a.ID, a.Name); err != nil {
			return nil, fmt.Errorf("failed to index author %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit index build: %w", err)
	}
	return &Index{db: db}, nil
}

// MatchBooks returns book ids whose title matches the query, best rank first,
// capped at limit.
func (ix *Index) MatchBooks(query string, limit int) ([]uint, error) {
	return ix.match("book_fts", query, limit)
}

// MatchAuthors returns author ids whose name matches the query, best rank
// first, capped at limit.
func (ix *Index) MatchAuthors(query string, limit int) ([]uint, error) {
	return ix.match("author_fts", query, limit)
}

func (ix *Index) match(table, query string, limit int) ([]uint, error) {
	q := ftsQuery(query)
	if q == "" {
		return nil, nil
	}
	rows, err := ix.db.Query(
		`SELECT rowid FROM `+table+` WHERE `+table+` MATCH ? ORDER BY rank LIMIT ?`,
		q, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}
	defer rows.Close()

	var ids []uint
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ftsQuery quotes each whitespace-separated term so user punctuation cannot
// be interpreted as FTS5 query syntax. Terms are implicitly AND-ed.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, `"`, `""`)
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " ")
}
