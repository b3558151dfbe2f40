package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/finmetrics/portfolio-api/internal/common"
	"github.com/finmetrics/portfolio-api/internal/server/models"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/repomanager"
)

// SecurityService implements CRUD for financial instruments keyed by symbol.
type SecurityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSecurityService(db *sql.DB, m repomanager.RepositoryManager) *SecurityService {
	return &SecurityService{db: db, repomanager: m}
}

func (s *SecurityService) Create(ctx context.Context, sec *models.Security) (*models.Security, error) {
	sec.Symbol = strings.TrimSpace(sec.Symbol)
	if sec.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is mandatory and cannot be empty", common.ErrorValidation)
	}
	if sec.SecType == "" {
		sec.SecType = models.SecTypeUndefined
	}
	if !sec.SecType.Valid() {
		return nil, fmt.Errorf("%w: unknown instrument type %q", common.ErrorValidation, sec.SecType)
	}
	sec.CompanyName = strings.TrimSpace(sec.CompanyName)
	sec.Description = strings.TrimSpace(sec.Description)

	repo := s.repomanager.Securities(s.db)
	created, err := repo.Create(ctx, sec)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, internalError("create instrument", err)
	}
	return created, nil
}

func (s *SecurityService) Get(ctx context.Context, symbol string) (*models.Security, error) {
	repo := s.repomanager.Securities(s.db)
	sec, err := repo.GetBySymbol(ctx, symbol)
	return translateLookup("get instrument", sec, err)
}

func (s *SecurityService) List(ctx context.Context) ([]*models.Security, error) {
	repo := s.repomanager.Securities(s.db)
	result, err := repo.List(ctx)
	if err != nil {
		return nil, internalError("list instruments", err)
	}
	return result, nil
}

func (s *SecurityService) Update(ctx context.Context, sec *models.Security) (*models.Security, error) {
	if sec.SecType == "" {
		sec.SecType = models.SecTypeUndefined
	}
	if !sec.SecType.Valid() {
		return nil, fmt.Errorf("%w: unknown instrument type %q", common.ErrorValidation, sec.SecType)
	}
	sec.CompanyName = strings.TrimSpace(sec.CompanyName)
	sec.Description = strings.TrimSpace(sec.Description)

	repo := s.repomanager.Securities(s.db)
	updated, err := repo.Update(ctx, sec)
	return translateLookup("update instrument", updated, err)
}

func (s *SecurityService) Delete(ctx context.Context, symbol string) error {
	repo := s.repomanager.Securities(s.db)
	if err := repo.Delete(ctx, symbol); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internalError("delete instrument", err)
	}
	return nil
}
