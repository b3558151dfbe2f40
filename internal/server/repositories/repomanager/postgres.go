// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/finmetrics/portfolio-api/internal/dbx"
	"github.com/finmetrics/portfolio-api/internal/server/migrations"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/metrics"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/portfolios"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/securities"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// OpenDB opens a database/sql handle over the pgx stdlib driver and verifies
// connectivity with a ping.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Portfolios returns a portfolios.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Portfolios(db dbx.DBTX) portfolios.Repository {
	return portfolios.NewPostgresRepository(db)
}

// Securities returns a securities.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Securities(db dbx.DBTX) securities.Repository {
	return securities.NewPostgresRepository(db)
}

// Metrics returns a metrics.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Metrics(db dbx.DBTX) metrics.Repository {
	return metrics.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
