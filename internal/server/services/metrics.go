package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/finmetrics/portfolio-api/internal/common"
	"github.com/finmetrics/portfolio-api/internal/server/models"
	"github.com/finmetrics/portfolio-api/internal/server/repositories/repomanager"
)

// MetricService implements metric CRUD and the derived portfolio
// performance summary.
type MetricService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewMetricService(db *sql.DB, m repomanager.RepositoryManager) *MetricService {
	return &MetricService{db: db, repomanager: m}
}

func (s *MetricService) Create(ctx context.Context, m *models.Metric) (*models.Metric, error) {
	if m.PortfolioID == 0 || m.MetricType == "" || m.Date.IsZero() {
		return nil, fmt.Errorf("%w: portfolio_id, date, and metric_type are required", common.ErrorValidation)
	}

	repo := s.repomanager.Metrics(s.db)
	created, err := repo.Create(ctx, m)
	if err != nil {
		return nil, internalError("create metric", err)
	}
	return created, nil
}

func (s *MetricService) Get(ctx context.Context, id int64) (*models.Metric, error) {
	repo := s.repomanager.Metrics(s.db)
	m, err := repo.GetByID(ctx, id)
	return translateLookup("get metric", m, err)
}

// List returns all metrics, or only one portfolio's when portfolioID != 0.
func (s *MetricService) List(ctx context.Context, portfolioID int64) ([]*models.Metric, error) {
	repo := s.repomanager.Metrics(s.db)
	result, err := repo.List(ctx, portfolioID)
	if err != nil {
		return nil, internalError("list metrics", err)
	}
	return result, nil
}

func (s *MetricService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Metrics(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internalError("delete metric", err)
	}
	return nil
}

// Summary computes performance figures over a portfolio's metric series,
// ordered by date. It needs at least two observations.
func (s *MetricService) Summary(ctx context.Context, portfolioID int64) (*models.PortfolioSummary, error) {
	repo := s.repomanager.Metrics(s.db)

	series, err := repo.List(ctx, portfolioID)
	if err != nil {
		return nil, internalError("portfolio summary", err)
	}
	if len(series) == 0 {
		return nil, common.ErrorNotFound
	}
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data points for calculations", common.ErrorInsufficientData)
	}

	values := make([]float64, len(series))
	for i, m := range series {
		values[i] = m.Value
	}
	first, last := values[0], values[len(values)-1]

	totalReturn := (last - first) / first * 100

	days := series[len(series)-1].Date.Sub(series[0].Date).Hours() / 24
	annualizedReturn := 0.0
	if days > 0 {
		annualizedReturn = (math.Pow(last/first, 365/days) - 1) * 100
	}

	// population standard deviation of the raw values
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	volatility := math.Sqrt(variance)

	sharpe := 0.0
	if volatility > 0 {
		sharpe = annualizedReturn / volatility
	}

	maxDrawdown := 0.0
	peak := values[0]
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := (peak - v) / peak; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	return &models.PortfolioSummary{
		PortfolioID:      portfolioID,
		TotalReturn:      round2(totalReturn),
		AnnualizedReturn: round2(annualizedReturn),
		Volatility:       round2(volatility),
		SharpeRatio:      round2(sharpe),
		MaxDrawdown:      round2(maxDrawdown * 100),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
