package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

var dialect = common.Dialect{
	Name:        "postgresql",
	Placeholder: squirrel.Dollar,
	CreateTable: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	seed_key TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	doc JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, table),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_id_idx ON %s (id)", table, table),
		}
	},
	FieldText: func(field string) string {
		return fmt.Sprintf("(doc->>'%s')", field)
	},
	IsDuplicate: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
	},
}

type Adapter struct {
	pool *pgxpool.Pool
	db   *sql.DB
	docs *common.DocStore
}

func New() *Adapter {
	return &Adapter{}
}

func (p *Adapter) Provider() string { return "postgresql" }

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	p.pool = pool
	p.db = stdlib.OpenDBFromPool(pool)
	p.docs = common.NewDocStore(p.db, dialect)
	return nil
}

func (p *Adapter) Close() error {
	if p.pool == nil {
		return nil
	}
	err := p.db.Close()
	p.pool.Close()
	p.pool, p.db, p.docs = nil, nil, nil
	return err
}

func (p *Adapter) HealthCheck(ctx context.Context) types.Health {
	if p.pool == nil {
		return types.Health{OK: false, Message: "not connected"}
	}
	if err := p.pool.Ping(ctx); err != nil {
		return types.Health{OK: false, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	var version string
	if err := p.pool.QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		return types.Health{OK: true, Message: "connected"}
	}
	return types.Health{OK: true, Message: fmt.Sprintf("connected to PostgreSQL %s", version)}
}

func (p *Adapter) Collection(name string) types.Collection {
	return p.docs.Collection(name)
}
