package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

var dialect = common.Dialect{
	Name:        "sqlite",
	Placeholder: squirrel.Question,
	CreateTable: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	seed_key TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	doc TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, table),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_id_idx ON %s (id)", table, table),
		}
	},
	FieldText: func(field string) string {
		return fmt.Sprintf("json_extract(doc, '$.%s')", field)
	},
	IsDuplicate: func(err error) bool {
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
	},
}

type Adapter struct {
	db   *sql.DB
	path string
	docs *common.DocStore
}

func New() *Adapter {
	return &Adapter{}
}

func (s *Adapter) Provider() string { return "sqlite" }

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	s.path = dbPath
	if idx := strings.Index(s.path, "?"); idx > 0 {
		s.path = s.path[:idx]
	}
	if !strings.Contains(dbPath, "?") {
		dbPath += "?cache=shared&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to open SQLite database %s: %w", s.path, err)
	}

	s.db = db
	s.docs = common.NewDocStore(db, dialect)
	return nil
}

func (s *Adapter) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db, s.docs = nil, nil
	return err
}

func (s *Adapter) HealthCheck(ctx context.Context) types.Health {
	if s.db == nil {
		return types.Health{OK: false, Message: "not connected"}
	}
	if err := s.db.PingContext(ctx); err != nil {
		return types.Health{OK: false, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return types.Health{OK: true, Message: fmt.Sprintf("connected to %s", s.path)}
}

func (s *Adapter) Collection(name string) types.Collection {
	return s.docs.Collection(name)
}
