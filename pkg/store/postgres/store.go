// Package postgres stores trees in a PostgreSQL table, one row per element
// record.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/pairtree/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS tree_element (
	tree		text	NOT NULL,
	seq			integer	NOT NULL,
	element		text	NOT NULL,
	parent_id	text	NULL,
	ids			text	NOT NULL DEFAULT '',
	created_at	timestamp with time zone
						DEFAULT now()
						NOT NULL,
	PRIMARY KEY (tree, seq)
);
ALTER TABLE tree_element ADD COLUMN IF NOT EXISTS ids text NOT NULL DEFAULT '';`

// Store is a PostgreSQL-backed [store.Store].
type Store struct {
	db *pgxpool.Pool
}

// Open creates a connection pool for url and pings the server.
// Call [Store.Migrate] before first use of a fresh database.
func Open(ctx context.Context, url string) (*Store, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates the tree_element table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Save replaces the rows of name inside one transaction.
func (s *Store) Save(ctx context.Context, name string, records []store.Record) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tree_element WHERE tree = $1`, name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"tree_element"},
		[]string{"tree", "seq", "element", "parent_id", "ids"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{name, r.Seq, r.Element, r.ParentID, r.IDs}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", name, err)
	}
	return tx.Commit(ctx)
}

// Load returns the rows of name ordered by seq.
func (s *Store) Load(ctx context.Context, name string) ([]store.Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT element, parent_id, seq, ids
		FROM tree_element
		WHERE tree = $1
		ORDER BY seq;`,
		name)
	if err != nil {
		return nil, err
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[store.Record])
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, store.ErrNotFound
	}
	return records, nil
}

// Delete removes the rows of name.
func (s *Store) Delete(ctx context.Context, name string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tree_element WHERE tree = $1`, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// List returns the distinct tree names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT tree FROM tree_element ORDER BY tree;`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Close closes the pool.
func (s *Store) Close(context.Context) error {
	s.db.Close()
	return nil
}

var _ store.Store = (*Store)(nil)
