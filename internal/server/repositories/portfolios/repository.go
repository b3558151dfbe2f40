package portfolios

import (
	"context"

	"github.com/finmetrics/portfolio-api/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error)
	GetByID(ctx context.Context, id int64) (*models.Portfolio, error)
	List(ctx context.Context) ([]*models.Portfolio, error)
	Update(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error)
	Delete(ctx context.Context, id int64) error
}
