package metrics

import (
	"context"

	"github.com/finmetrics/portfolio-api/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Metric) (*models.Metric, error)
	GetByID(ctx context.Context, id int64) (*models.Metric, error)
	// List returns all metrics; when portfolioID is non-zero, only that
	// portfolio's metrics, ordered by date.
	List(ctx context.Context, portfolioID int64) ([]*models.Metric, error)
	Delete(ctx context.Context, id int64) error
}
