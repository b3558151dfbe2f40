package securities

import (
	"context"

	"github.com/finmetrics/portfolio-api/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Security) (*models.Security, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Security, error)
	List(ctx context.Context) ([]*models.Security, error)
	Update(ctx context.Context, s *models.Security) (*models.Security, error)
	Delete(ctx context.Context, symbol string) error
}
