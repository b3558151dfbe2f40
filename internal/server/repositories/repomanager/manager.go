package repomanager

import (
	"context"
	"database/sql"

	"github.com/finmetrics/portfolio-api/internal/dbx"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/metrics"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/portfolios"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/securities"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Portfolios(db dbx.DBTX) portfolios.Repository
	Securities(db dbx.DBTX) securities.Repository
	Metrics(db dbx.DBTX) metrics.Repository
}
