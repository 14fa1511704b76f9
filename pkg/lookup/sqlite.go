package lookup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-specform/pkg/schema"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		parent_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS attributes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_id TEXT NOT NULL,
		group_name TEXT NOT NULL DEFAULT '',
		key TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		UNIQUE (category_id, key)
	)`,
}

// SQLiteStore keeps the catalogue in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ Store  = (*SQLiteStore)(nil)
	_ Writer = (*SQLiteStore)(nil)
)

// OpenSQLite opens dsn with the pure-Go sqlite driver and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("lookup: open sqlite: %w", err)
	}
	// every :memory: connection is its own database
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	store, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an open database and creates the tables.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("lookup: database is nil")
	}
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("lookup: migrate: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PutCategory inserts or updates a category.
func (s *SQLiteStore) PutCategory(ctx context.Context, category Category) error {
	id := strings.TrimSpace(category.ID)
	if id == "" {
		return errors.New("lookup: category id required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, parent_id, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET parent_id = excluded.parent_id, name = excluded.name`,
		id, strings.TrimSpace(category.ParentID), category.Name)
	if err != nil {
		return fmt.Errorf("lookup: put category %q: %w", id, err)
	}
	return nil
}

// PutAttribute inserts or updates an attribute keyed by (category, key).
func (s *SQLiteStore) PutAttribute(ctx context.Context, attribute Attribute) error {
	key := strings.TrimSpace(attribute.Key)
	if key == "" {
		return errors.New("lookup: attribute key required")
	}
	label := strings.TrimSpace(attribute.Label)
	if label == "" {
		label = key
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attributes (category_id, group_name, key, label, sort_order) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(category_id, key) DO UPDATE SET
			group_name = excluded.group_name, label = excluded.label, sort_order = excluded.sort_order`,
		attribute.CategoryID, strings.TrimSpace(attribute.Group), key, label, attribute.SortOrder)
	if err != nil {
		return fmt.Errorf("lookup: put attribute %q: %w", key, err)
	}
	return nil
}

// Categories lists every category ordered by name.
func (s *SQLiteStore) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, parent_id, name FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("lookup: list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Lineage returns the ids from the root ancestor down to categoryID. A parent
// cycle ends the walk at the first repeated id.
func (s *SQLiteStore) Lineage(ctx context.Context, categoryID string) ([]string, error) {
	var (
		chain []string
		seen  = make(map[string]struct{})
		id    = strings.TrimSpace(categoryID)
	)
	for id != "" {
		if _, ok := seen[id]; ok {
			break
		}
		seen[id] = struct{}{}

		var parent string
		err := s.db.QueryRowContext(ctx, `SELECT parent_id FROM categories WHERE id = ?`, id).Scan(&parent)
		if errors.Is(err, sql.ErrNoRows) {
			if len(chain) == 0 {
				return nil, ErrCategoryNotFound
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lookup: load category %q: %w", id, err)
		}
		chain = append(chain, id)
		id = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// AttributesFor returns the grouped schema for categoryID and its ancestors.
func (s *SQLiteStore) AttributesFor(ctx context.Context, categoryID string) (schema.Schema, error) {
	lineage, err := s.Lineage(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	var attrs []Attribute
	for _, id := range lineage {
		rows, err := s.db.QueryContext(ctx, `
			SELECT category_id, group_name, key, label, sort_order
			FROM attributes WHERE category_id = ?
			ORDER BY sort_order, id`, id)
		if err != nil {
			return nil, fmt.Errorf("lookup: load attributes for %q: %w", id, err)
		}
		for rows.Next() {
			var a Attribute
			if err := rows.Scan(&a.CategoryID, &a.Group, &a.Key, &a.Label, &a.SortOrder); err != nil {
				_ = rows.Close()
				return nil, err
			}
			attrs = append(attrs, a)
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return group(attrs), nil
}
