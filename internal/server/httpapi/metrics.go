package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finmetrics/portfolio-api/internal/server/models"
)

type MetricService interface {
	Create(ctx context.Context, m *models.Metric) (*models.Metric, error)
	Get(ctx context.Context, id int64) (*models.Metric, error)
	List(ctx context.Context, portfolioID int64) ([]*models.Metric, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, portfolioID int64) (*models.PortfolioSummary, error)
}

type MetricHandler struct {
	metrics MetricService
}

func NewMetricHandler(metrics MetricService) *MetricHandler {
	return &MetricHandler{metrics: metrics}
}

type metricRequest struct {
	PortfolioID int64   `json:"portfolio_id"`
	Date        string  `json:"date"`
	Value       float64 `json:"value"`
	MetricType  string  `json:"metric_type"`
}

type metricResponse struct {
	ID          int64   `json:"id"`
	PortfolioID int64   `json:"portfolio_id"`
	Date        string  `json:"date"`
	Value       float64 `json:"value"`
	MetricType  string  `json:"metric_type"`
}

type summaryResponse struct {
	PortfolioID      int64   `json:"portfolio_id"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
}

func toMetricResponse(m *models.Metric) metricResponse {
	return metricResponse{
		ID:          m.ID,
		PortfolioID: m.PortfolioID,
		Date:        m.Date.Format("2006-01-02"),
		Value:       m.Value,
		MetricType:  m.MetricType,
	}
}

func (h *MetricHandler) Create(c *gin.Context) {
	var req metricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "date must be in YYYY-MM-DD format")
		return
	}

	created, err := h.metrics.Create(c.Request.Context(), &models.Metric{
		PortfolioID: req.PortfolioID,
		Date:        day,
		Value:       req.Value,
		MetricType:  req.MetricType,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Metric created", toMetricResponse(created))
}

func (h *MetricHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "metric_id")
	if !ok {
		return
	}

	m, err := h.metrics.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Success", toMetricResponse(m))
}

// List returns all metrics, optionally filtered by the portfolio_id
// query parameter.
func (h *MetricHandler) List(c *gin.Context) {
	var portfolioID int64
	if raw := c.Query("portfolio_id"); raw != "" {
		id, ok := queryID(c, raw, "portfolio_id")
		if !ok {
			return
		}
		portfolioID = id
	}

	result, err := h.metrics.List(c.Request.Context(), portfolioID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]metricResponse, 0, len(result))
	for _, m := range result {
		out = append(out, toMetricResponse(m))
	}
	respondSuccess(c, http.StatusOK, "Success", out)
}

func (h *MetricHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "metric_id")
	if !ok {
		return
	}

	if err := h.metrics.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MetricHandler) Summary(c *gin.Context) {
	id, ok := pathID(c, "portfolio_id")
	if !ok {
		return
	}

	summary, err := h.metrics.Summary(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Success", summaryResponse{
		PortfolioID:      summary.PortfolioID,
		TotalReturn:      summary.TotalReturn,
		AnnualizedReturn: summary.AnnualizedReturn,
		Volatility:       summary.Volatility,
		SharpeRatio:      summary.SharpeRatio,
		MaxDrawdown:      summary.MaxDrawdown,
	})
}
