package common

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/Masterminds/squirrel"
)

// Dialect captures what differs between the SQL providers that keep seeded
// documents as JSON rows.
type Dialect struct {
	Name        string
	Placeholder squirrel.PlaceholderFormat

	// CreateTable returns the statements that create a document table.
	CreateTable func(table string) []string

	// FieldText returns an expression reading a top-level document field as text.
	FieldText func(field string) string

	IsDuplicate func(err error) bool
}

// DocStore maps collections onto tables of (seed_key, id, doc, created_at, updated_at).
// The encoded natural key is the primary key.
type DocStore struct {
	db      *sql.DB
	dialect Dialect
	qb      squirrel.StatementBuilderType

	mu      sync.Mutex
	ensured map[string]bool
}

func NewDocStore(db *sql.DB, dialect Dialect) *DocStore {
	return &DocStore{
		db:      db,
		dialect: dialect,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		ensured: make(map[string]bool),
	}
}

func (s *DocStore) Collection(name string) types.Collection {
	return &docCollection{store: s, table: name}
}

func (s *DocStore) ensureTable(ctx context.Context, table string) error {
	if !IsValidIdentifier(table) {
		return fmt.Errorf("invalid collection name: %s", table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[table] {
		return nil
	}
	for _, stmt := range s.dialect.CreateTable(table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	s.ensured[table] = true
	return nil
}

func (s *DocStore) forget(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ensured, table)
}

type docCollection struct {
	store *DocStore
	table string
}

func (c *docCollection) Name() string { return c.table }

func (c *docCollection) FindOne(ctx context.Context, key types.Key) (types.Document, bool, error) {
	return c.findWhere(ctx, squirrel.Eq{"seed_key": key.String()})
}

func (c *docCollection) FindByID(ctx context.Context, id string) (types.Document, bool, error) {
	return c.findWhere(ctx, squirrel.Eq{"id": id})
}

func (c *docCollection) findWhere(ctx context.Context, pred squirrel.Sqlizer) (types.Document, bool, error) {
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return nil, false, err
	}

	query, args, err := c.store.qb.Select("doc").From(c.table).Where(pred).Limit(1).ToSql()
	if err != nil {
		return nil, false, err
	}

	var raw string
	err = c.store.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find in %s: %w", c.table, err)
	}

	var doc types.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false, fmt.Errorf("decode document in %s: %w", c.table, err)
	}
	return doc, true, nil
}

func (c *docCollection) Insert(ctx context.Context, key types.Key, doc types.Document) error {
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document for %s: %w", c.table, err)
	}

	now := time.Now().UTC()
	query, args, err := c.store.qb.Insert(c.table).
		Columns("seed_key", "id", "doc", "created_at", "updated_at").
		Values(key.String(), idOf(doc), string(payload), now, now).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := c.store.db.ExecContext(ctx, query, args...); err != nil {
		if c.store.dialect.IsDuplicate != nil && c.store.dialect.IsDuplicate(err) {
			return fmt.Errorf("%w: %v", types.ErrDuplicateKey, err)
		}
		return fmt.Errorf("insert into %s: %w", c.table, err)
	}
	return nil
}

func (c *docCollection) Replace(ctx context.Context, key types.Key, doc types.Document) error {
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document for %s: %w", c.table, err)
	}

	query, args, err := c.store.qb.Update(c.table).
		Set("id", idOf(doc)).
		Set("doc", string(payload)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"seed_key": key.String()}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := c.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", c.table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace in %s: %w", c.table, err)
	}
	if affected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (c *docCollection) Count(ctx context.Context) (int64, error) {
	return c.count(ctx, nil)
}

func (c *docCollection) CountMissing(ctx context.Context, field string) (int64, error) {
	if !IsValidIdentifier(field) {
		return 0, fmt.Errorf("invalid field name: %s", field)
	}
	expr := c.store.dialect.FieldText(field)
	return c.count(ctx, squirrel.Or{
		squirrel.Expr(expr + " IS NULL"),
		squirrel.Expr(expr + " = ''"),
	})
}

func (c *docCollection) count(ctx context.Context, pred squirrel.Sqlizer) (int64, error) {
	if err := c.store.ensureTable(ctx, c.table); err != nil {
		return 0, err
	}

	sb := c.store.qb.Select("COUNT(*)").From(c.table)
	if pred != nil {
		sb = sb.Where(pred)
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := c.store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.table, err)
	}
	return n, nil
}

// EnsureKeyIndex only creates the table: the encoded key is its primary key.
func (c *docCollection) EnsureKeyIndex(ctx context.Context, fields []string) error {
	return c.store.ensureTable(ctx, c.table)
}

func (c *docCollection) Drop(ctx context.Context) error {
	if !IsValidIdentifier(c.table) {
		return fmt.Errorf("invalid collection name: %s", c.table)
	}
	if _, err := c.store.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", c.table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", c.table, err)
	}
	c.store.forget(c.table)
	return nil
}

func idOf(doc types.Document) string {
	if id, ok := doc[types.IDField]; ok && id != nil {
		return fmt.Sprint(id)
	}
	return ""
}
