// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikidata links entity mentions to Wikidata, either in-process
// against a local SQLite knowledge base or through an OpenTapioca
// annotate endpoint.
package wikidata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Wikidata properties walked for super-categories.
const (
	PropInstanceOf = 31
	PropSubclassOf = 279
)

// ErrKBNotFound is returned when the knowledge base file does not exist.
var ErrKBNotFound = errors.New("wikidata knowledge base not found")

// Entity is one knowledge-base record.
type Entity struct {
	ID          int64
	Label       string
	Description string
	Prior       float64
}

// QID returns the entity identifier in Wikidata form, e.g. "Q23548".
func (e Entity) QID() string {
	return FormatQID(e.ID)
}

// FormatQID renders a numeric id as "Q<id>".
func FormatQID(id int64) string {
	return "Q" + strconv.FormatInt(id, 10)
}

// ParseQID parses "Q23548" (or "23548") into its numeric id.
func ParseQID(s string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "Q")
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid Wikidata id %q", s)
	}
	return id, nil
}

// KB is a local Wikidata knowledge base stored in SQLite.
type KB struct {
	db *sql.DB
}

// Open opens an existing knowledge base read-only.
func Open(path string) (*KB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrKBNotFound, path)
		}
		return nil, fmt.Errorf("stat knowledge base %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", dsn(path, "mode=ro"))
	if err != nil {
		return nil, fmt.Errorf("opening knowledge base: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening knowledge base %s: %w", path, err)
	}
	return &KB{db: db}, nil
}

// Create opens or creates a writable knowledge base at path, creating the
// parent directory and schema when missing.
func Create(path string) (*KB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating knowledge base directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn(path, "_journal_mode=WAL&_foreign_keys=on"))
	if err != nil {
		return nil, fmt.Errorf("opening knowledge base: %w", err)
	}

	kb := &KB{db: db}
	if err := kb.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return kb, nil
}

// uriEscaper escapes the characters that end or alter the path part of
// an SQLite URI filename. SQLite decodes %HH escapes when opening.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// dsn builds a "file:" URI for path with the given query parameters.
func dsn(path, query string) string {
	return "file:" + uriEscaper.Replace(path) + "?" + query
}

// Close releases the database connection.
func (kb *KB) Close() error {
	return kb.db.Close()
}

func (kb *KB) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id INTEGER PRIMARY KEY,
			label TEXT NOT NULL,
			description TEXT,
			prior REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS aliases (
			alias TEXT NOT NULL COLLATE NOCASE,
			entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
			PRIMARY KEY (alias, entity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS statements (
			source INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
			property INTEGER NOT NULL,
			target INTEGER NOT NULL,
			PRIMARY KEY (source, property, target)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_aliases_entity ON aliases(entity_id)`,
	}

	for _, stmt := range statements {
		if _, err := kb.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Resolve returns the entity whose alias matches mention (case-insensitive)
// with the highest prior. ok is false when no alias matches.
func (kb *KB) Resolve(ctx context.Context, mention string) (Entity, bool, error) {
	var e Entity
	var desc sql.NullString
	err := kb.db.QueryRowContext(ctx,
		`SELECT e.id, e.label, e.description, e.prior
		   FROM aliases a JOIN entities e ON e.id = a.entity_id
		  WHERE a.alias = ?
		  ORDER BY e.prior DESC, e.id ASC
		  LIMIT 1`, strings.TrimSpace(mention),
	).Scan(&e.ID, &e.Label, &desc, &e.Prior)
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, false, nil
	}
	if err != nil {
		return Entity{}, false, fmt.Errorf("resolving %q: %w", mention, err)
	}
	e.Description = desc.String
	return e, true, nil
}

// SuperEntities walks instance-of and subclass-of edges breadth-first from
// id, up to maxDepth levels, and returns the ids reached in visit order.
// The starting entity is never included and each id appears once.
func (kb *KB) SuperEntities(ctx context.Context, id int64, maxDepth int) ([]int64, error) {
	stmt, err := kb.db.PrepareContext(ctx,
		`SELECT target FROM statements
		  WHERE source = ? AND property IN (?, ?)
		  ORDER BY property, target`)
	if err != nil {
		return nil, fmt.Errorf("preparing superclass query: %w", err)
	}
	defer stmt.Close()

	seen := map[int64]bool{id: true}
	frontier := []int64{id}
	var out []int64

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []int64
		for _, src := range frontier {
			targets, err := queryIDs(ctx, stmt, src, PropInstanceOf, PropSubclassOf)
			if err != nil {
				return nil, fmt.Errorf("walking superclasses of %s: %w", FormatQID(src), err)
			}
			for _, t := range targets {
				if seen[t] {
					continue
				}
				seen[t] = true
				out = append(out, t)
				next = append(next, t)
			}
		}
		frontier = next
	}
	return out, nil
}

func queryIDs(ctx context.Context, stmt *sql.Stmt, args ...any) ([]int64, error) {
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stats holds row counts of the knowledge base tables.
type Stats struct {
	Entities   int `json:"entities" yaml:"entities"`
	Aliases    int `json:"aliases" yaml:"aliases"`
	Statements int `json:"statements" yaml:"statements"`
}

// Stats counts the rows of each table.
func (kb *KB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	counts := []struct {
		table string
		dest  *int
	}{
		{"entities", &s.Entities},
		{"aliases", &s.Aliases},
		{"statements", &s.Statements},
	}
	for _, c := range counts {
		if err := kb.db.QueryRowContext(ctx, "SELECT count(*) FROM "+c.table).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}
	return s, nil
}
