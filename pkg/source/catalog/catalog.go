// Package catalog provides a source resolver backed by a SQLite catalog of
// named artifact sets.
//
// Specifications of the form "catalog:<name>" resolve to the locations
// stored under name, in insertion order:
//
//	c, err := catalog.Open("/var/lib/scopegraph/catalog.db")
//	c.Put(ctx, "plugins", "file:///opt/plugins/a.jar", "https://repo.example/b/")
//	reg := source.NewRegistry(c) // "catalog:plugins" now resolves
//
// The catalog owns its database handle and implements [io.Closer], so a
// materialized graph closes it together with its other resources.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/source"
)

// Prefix introduces catalog specifications.
const Prefix = "catalog:"

// Catalog is a SQLite-backed Resolver.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at path. Use ":memory:" for
// a throwaway catalog.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog db: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog schema migration failed: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS locations (
		set_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		location TEXT NOT NULL,
		PRIMARY KEY (set_name, position)
	);
	`
	_, err := c.db.Exec(query)
	return err
}

// Name implements source.Named.
func (c *Catalog) Name() string { return "catalog" }

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Put replaces the locations stored under name.
func (c *Catalog) Put(ctx context.Context, name string, locations ...string) error {
	if err := errors.ValidateNodeName(name); err != nil {
		return err
	}
	for _, loc := range locations {
		u, err := url.Parse(loc)
		if err != nil || u.Scheme == "" {
			return errors.New(errors.ErrCodeInvalidInput, "catalog location %q is not an absolute URL", loc)
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE set_name = ?`, name); err != nil {
		return fmt.Errorf("failed to clear set %q: %w", name, err)
	}
	for i, loc := range locations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO locations (set_name, position, location) VALUES (?, ?, ?)`,
			name, i, loc); err != nil {
			return fmt.Errorf("failed to store location %q: %w", loc, err)
		}
	}
	return tx.Commit()
}

// Get returns the locations stored under name. ok is false for unknown
// sets.
func (c *Catalog) Get(ctx context.Context, name string) (source.Locations, bool, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT location FROM locations WHERE set_name = ? ORDER BY position`, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query set %q: %w", name, err)
	}
	defer rows.Close()

	var locs source.Locations
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, false, err
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt location %q in set %q: %w", raw, name, err)
		}
		locs = append(locs, u)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return locs, len(locs) > 0, nil
}

// List returns the names of all stored sets, sorted.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT set_name FROM locations ORDER BY set_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Resolve implements source.Resolver for "catalog:<name>" specifications.
// Unknown set names are declined so that later resolvers can try.
func (c *Catalog) Resolve(ctx context.Context, spec string, _ source.Finder) (source.Artifacts, bool, error) {
	name, ok := strings.CutPrefix(spec, Prefix)
	if !ok {
		return nil, false, nil
	}
	locs, found, err := c.Get(ctx, name)
	if err != nil || !found {
		return nil, false, err
	}
	return locs, true, nil
}

var _ source.Resolver = (*Catalog)(nil)
