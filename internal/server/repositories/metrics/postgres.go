package metrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finmetrics/portfolio-api/internal/common"
	"github.com/finmetrics/portfolio-api/internal/dbx"
	"github.com/finmetrics/portfolio-api/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Metric) (*models.Metric, error) {

	query :=
		`INSERT INTO portfolio_metrics (portfolio_id, date, value, metric_type)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		m.PortfolioID, m.Date, m.Value, m.MetricType).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Metric, error) {
	query :=
		`SELECT id, portfolio_id, date, value, metric_type, created_at FROM portfolio_metrics
		 WHERE id = $1
		 `

	m := &models.Metric{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.PortfolioID, &m.Date, &m.Value, &m.MetricType, &m.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) List(ctx context.Context, portfolioID int64) ([]*models.Metric, error) {
	query :=
		`SELECT id, portfolio_id, date, value, metric_type, created_at FROM portfolio_metrics
		 ORDER BY date, id
		 `
	args := []any{}

	if portfolioID != 0 {
		query =
			`SELECT id, portfolio_id, date, value, metric_type, created_at FROM portfolio_metrics
			 WHERE portfolio_id = $1
			 ORDER BY date, id
			 `
		args = append(args, portfolioID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Metric{}
	for rows.Next() {
		m := &models.Metric{}
		if err := rows.Scan(&m.ID, &m.PortfolioID, &m.Date, &m.Value, &m.MetricType, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM portfolio_metrics WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
