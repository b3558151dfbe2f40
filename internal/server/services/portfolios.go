package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finmetrics/portfolio-api/internal/common"
	"github.com/finmetrics/portfolio-api/internal/server/models"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/repomanager"
)

// PortfolioService implements portfolio CRUD over the repository layer.
type PortfolioService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPortfolioService(db *sql.DB, m repomanager.RepositoryManager) *PortfolioService {
	return &PortfolioService{db: db, repomanager: m}
}

func (s *PortfolioService) Create(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}

	repo := s.repomanager.Portfolios(s.db)
	created, err := repo.Create(ctx, p)
	if err != nil {
		return nil, internalError("create portfolio", err)
	}
	return created, nil
}

func (s *PortfolioService) Get(ctx context.Context, id int64) (*models.Portfolio, error) {
	repo := s.repomanager.Portfolios(s.db)
	p, err := repo.GetByID(ctx, id)
	return translateLookup("get portfolio", p, err)
}

func (s *PortfolioService) List(ctx context.Context) ([]*models.Portfolio, error) {
	repo := s.repomanager.Portfolios(s.db)
	result, err := repo.List(ctx)
	if err != nil {
		return nil, internalError("list portfolios", err)
	}
	return result, nil
}

func (s *PortfolioService) Update(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}

	repo := s.repomanager.Portfolios(s.db)
	updated, err := repo.Update(ctx, p)
	return translateLookup("update portfolio", updated, err)
}

func (s *PortfolioService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Portfolios(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internalError("delete portfolio", err)
	}
	return nil
}
